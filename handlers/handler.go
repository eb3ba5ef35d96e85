package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/filestore"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// Store is the persistence surface the handlers depend on. *store.Store implements it.
type Store interface {
	CreateInvoice(ctx context.Context, userID int64, in models.InvoiceInput) (models.Invoice, error)
	ListInvoices(ctx context.Context, f store.InvoiceFilter) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (models.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, nb string) (models.Invoice, error)
	LastInvoiceNumber(ctx context.Context) (*string, error)
	PatchInvoice(ctx context.Context, id int64, fields map[string]any) (models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	GetProductByCode(ctx context.Context, code string) (models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	PatchProduct(ctx context.Context, id int64, fields map[string]any) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (models.User, error)
	PatchUser(ctx context.Context, id int64, fields map[string]any) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	Dashboard(ctx context.Context) (models.Dashboard, error)
}

// Options wires the handler collaborators.
type Options struct {
	Store  Store
	Files  filestore.Store
	Tokens *auth.Tokens
	// APIKeys maps X-API-KEY values to app names. Empty disables the check.
	APIKeys map[string]string
	// Images serves uploaded files under /images. Nil when uploads are not stored locally.
	Images http.Handler
}

// Handler serves the REST API.
type Handler struct {
	store   Store
	files   filestore.Store
	tokens  *auth.Tokens
	apiKeys map[string]string
	images  http.Handler
}

// New returns a Handler serving the collaborators in opts.
func New(opts Options) *Handler {
	return &Handler{
		store:   opts.Store,
		files:   opts.Files,
		tokens:  opts.Tokens,
		apiKeys: opts.APIKeys,
		images:  opts.Images,
	}
}

// pathID parses a positive integer URL parameter. It writes the 400 itself.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
