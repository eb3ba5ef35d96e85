package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore embeds Store so each test overrides only what it exercises. Calling anything
// else panics.
type fakeStore struct {
	Store

	createInvoice  func(userID int64, in models.InvoiceInput) (models.Invoice, error)
	listInvoices   func(f store.InvoiceFilter) ([]models.Invoice, error)
	getInvoice     func(id int64) (models.Invoice, error)
	lastNumber     func() (*string, error)
	deleteProduct  func(id int64) error
	getProduct     func(id int64) (models.Product, error)
	userByUsername func(username string) (models.User, error)
	listUsers      func() ([]models.User, error)
	getUser        func(id int64) (models.User, error)
	dashboard      func() (models.Dashboard, error)
	createCategory func(in models.CategoryInput) (models.Category, error)
}

func (f *fakeStore) CreateInvoice(_ context.Context, userID int64, in models.InvoiceInput) (models.Invoice, error) {
	return f.createInvoice(userID, in)
}

func (f *fakeStore) ListInvoices(_ context.Context, filter store.InvoiceFilter) ([]models.Invoice, error) {
	return f.listInvoices(filter)
}

func (f *fakeStore) GetInvoice(_ context.Context, id int64) (models.Invoice, error) {
	return f.getInvoice(id)
}

func (f *fakeStore) LastInvoiceNumber(context.Context) (*string, error) { return f.lastNumber() }

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error { return f.deleteProduct(id) }

func (f *fakeStore) GetProduct(_ context.Context, id int64) (models.Product, error) {
	return f.getProduct(id)
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	return f.userByUsername(username)
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) { return f.listUsers() }

func (f *fakeStore) GetUser(_ context.Context, id int64) (models.User, error) { return f.getUser(id) }

func (f *fakeStore) Dashboard(context.Context) (models.Dashboard, error) { return f.dashboard() }

func (f *fakeStore) CreateCategory(_ context.Context, in models.CategoryInput) (models.Category, error) {
	return f.createCategory(in)
}

type fakeFiles struct {
	name string
	body string
}

func (f *fakeFiles) Save(_ context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.name, f.body = name, string(b)
	return "1737532800000-abcd1234-" + name, nil
}

const (
	testSecret = "test-secret"
	mobileKey  = "mobile-key"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type testServer struct {
	t      *testing.T
	store  *fakeStore
	files  *fakeFiles
	tokens *auth.Tokens
	h      http.Handler
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{t: t, store: &fakeStore{}, files: &fakeFiles{}, tokens: auth.NewTokens(testSecret, time.Hour)}
	ts.h = New(Options{
		Store:   ts.store,
		Files:   ts.files,
		Tokens:  ts.tokens,
		APIKeys: map[string]string{mobileKey: "mobile"},
	}).Routes()
	return ts
}

func (ts *testServer) token(userID int64, admin bool) string {
	tok, err := ts.tokens.Issue(userID, "alice", admin)
	require.NoError(ts.t, err)
	return tok
}

// do sends an authenticated request as user 5 unless headers override it.
func (ts *testServer) do(method, path string, body io.Reader, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("X-API-KEY", mobileKey)
	req.Header.Set("Authorization", "Bearer "+ts.token(5, false))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
		} else {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t)
	ts.store.lastNumber = func() (*string, error) { return nil, nil }

	rec, env := ts.do(http.MethodGet, "/api/v1/invoices/last", nil, map[string]string{"X-API-KEY": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "API key required", env.Error)

	rec, env = ts.do(http.MethodGet, "/api/v1/invoices/last", nil, map[string]string{"X-API-KEY": "nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "invalid API key", env.Error)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices/last", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeySkippedWhenUnconfigured(t *testing.T) {
	fs := &fakeStore{lastNumber: func() (*string, error) { return nil, nil }}
	tokens := auth.NewTokens(testSecret, time.Hour)
	h := New(Options{Store: fs, Tokens: tokens}).Routes()
	tok, err := tokens.Issue(1, "bob", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/last", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerTokenRequired(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(http.MethodGet, "/api/v1/invoices", nil, map[string]string{"Authorization": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := ts.do(http.MethodGet, "/api/v1/invoices", nil, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", env.Error)
}

const acmeBody = `{"project_name":"Acme","invoice_nb":"INV-1","total":30,
	"items":[{"product_id":3,"qty":2,"price":10},{"product_id":4,"qty":1,"price":10}]}`

func TestCreateInvoice(t *testing.T) {
	ts := newTestServer(t)
	var gotUser int64
	var got models.InvoiceInput
	ts.store.createInvoice = func(userID int64, in models.InvoiceInput) (models.Invoice, error) {
		gotUser, got = userID, in
		items := make([]models.InvoiceItem, len(in.Items))
		for i, it := range in.Items {
			items[i] = models.InvoiceItem{ID: int64(10 + i), InvoiceID: 1, ProductID: it.ProductID, Qty: it.Qty, Price: it.Price}
		}
		return models.Invoice{ID: 1, ProjectName: in.ProjectName, InvoiceNb: in.InvoiceNb, Total: *in.Total, Items: items}, nil
	}

	rec, env := ts.do(http.MethodPost, "/api/v1/invoices", strings.NewReader(acmeBody), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, int64(5), gotUser)
	assert.Equal(t, "Acme", got.ProjectName)
	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(10)))

	var inv models.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	assert.Equal(t, int64(1), inv.ID)
	assert.Len(t, inv.Items, 2)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(30)))
}

func TestCreateInvoiceRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty items":     `{"project_name":"Acme","invoice_nb":"INV-2","total":0,"items":[]}`,
		"missing items":   `{"project_name":"Acme","invoice_nb":"INV-2"}`,
		"items not array": `{"project_name":"Acme","invoice_nb":"INV-2","items":{"product_id":1}}`,
		"string quantity": `{"project_name":"Acme","invoice_nb":"INV-2","items":[{"product_id":1,"qty":"2","price":1}]}`,
		"not json":        `{"project_name":`,
		"no project name": `{"invoice_nb":"INV-2","items":[{"product_id":1,"qty":1,"price":1}]}`,
		"huge quantity":   `{"project_name":"Acme","invoice_nb":"INV-2","items":[{"product_id":1,"qty":3000000000,"price":1}]}`,
		"huge price":      `{"project_name":"Acme","invoice_nb":"INV-2","items":[{"product_id":1,"qty":1,"price":1e10}]}`,
		"sub-cent price":  `{"project_name":"Acme","invoice_nb":"INV-2","items":[{"product_id":1,"qty":2,"price":"10.005"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t)
			calls := 0
			ts.store.createInvoice = func(_ int64, in models.InvoiceInput) (models.Invoice, error) {
				calls++
				// The real store validates before touching the pool.
				if msg := in.Validate(); msg != "" {
					return models.Invoice{}, &store.ValidationError{Msg: msg}
				}
				return models.Invoice{}, nil
			}

			rec, env := ts.do(http.MethodPost, "/api/v1/invoices", strings.NewReader(body), nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, env.Error)
			assert.LessOrEqual(t, calls, 1)
		})
	}
}

func TestCreateInvoiceStoreFailures(t *testing.T) {
	ts := newTestServer(t)

	ts.store.createInvoice = func(int64, models.InvoiceInput) (models.Invoice, error) {
		return models.Invoice{}, &store.WriteError{Op: "insert invoice item 1", Err: errors.New("fk violation")}
	}
	rec, _ := ts.do(http.MethodPost, "/api/v1/invoices", strings.NewReader(acmeBody), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	ts.store.createInvoice = func(int64, models.InvoiceInput) (models.Invoice, error) {
		return models.Invoice{}, &store.WriteError{Op: "insert invoice", Err: &pgconn.PgError{Code: "23505"}}
	}
	rec, _ = ts.do(http.MethodPost, "/api/v1/invoices", strings.NewReader(acmeBody), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListInvoicesFilters(t *testing.T) {
	ts := newTestServer(t)
	var got store.InvoiceFilter
	ts.store.listInvoices = func(f store.InvoiceFilter) ([]models.Invoice, error) {
		got = f
		return []models.Invoice{}, nil
	}

	rec, env := ts.do(http.MethodGet, "/api/v1/invoices/search?userId=5&startDate=2024-01-01&projectName=ac&color=red", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	require.NotNil(t, got.UserID)
	assert.Equal(t, int64(5), *got.UserID)
	require.NotNil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
	assert.Equal(t, "ac", got.ProjectName)

	rec, env = ts.do(http.MethodGet, "/api/v1/invoices?userId=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "userId: must be a positive integer", env.Error)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices?startDate=01/02/2024", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceConvenienceLists(t *testing.T) {
	ts := newTestServer(t)
	var got store.InvoiceFilter
	ts.store.listInvoices = func(f store.InvoiceFilter) ([]models.Invoice, error) {
		got = f
		return []models.Invoice{}, nil
	}

	rec, _ := ts.do(http.MethodGet, "/api/v1/invoices/user/7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), *got.UserID)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices/project/Acme%20Ltd", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Ltd", got.ProjectName)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices/range?startDate=2024-01-01&endDate=2024-01-31", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), *got.EndDate)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices/range?startDate=2024-01-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInvoiceNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.store.getInvoice = func(int64) (models.Invoice, error) { return models.Invoice{}, store.ErrNotFound }

	rec, env := ts.do(http.MethodGet, "/api/v1/invoices/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "invoice not found", env.Error)

	rec, _ = ts.do(http.MethodGet, "/api/v1/invoices/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLastInvoiceNumber(t *testing.T) {
	ts := newTestServer(t)
	ts.store.lastNumber = func() (*string, error) { return nil, nil }

	_, env := ts.do(http.MethodGet, "/api/v1/invoices/last", nil, nil)
	assert.JSONEq(t, `{"invoice_nb":null}`, string(env.Data))

	nb := "INV-12"
	ts.store.lastNumber = func() (*string, error) { return &nb, nil }
	_, env = ts.do(http.MethodGet, "/api/v1/invoices/last", nil, nil)
	assert.JSONEq(t, `{"invoice_nb":"INV-12"}`, string(env.Data))
}

func TestDeleteProductNoContent(t *testing.T) {
	ts := newTestServer(t)
	ts.store.deleteProduct = func(id int64) error {
		if id == 3 {
			return nil
		}
		return store.ErrNotFound
	}

	rec, _ := ts.do(http.MethodDelete, "/api/v1/products/3", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, _ = ts.do(http.MethodDelete, "/api/v1/products/4", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsByIDParameter(t *testing.T) {
	ts := newTestServer(t)
	ts.store.getProduct = func(id int64) (models.Product, error) {
		if id == 3 {
			return models.Product{ID: 3, Name: "Bolt"}, nil
		}
		return models.Product{}, store.ErrNotFound
	}

	_, env := ts.do(http.MethodGet, "/api/v1/products?id=3&name=ignored", nil, nil)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Bolt", products[0].Name)

	_, env = ts.do(http.MethodGet, "/api/v1/products?id=4", nil, nil)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestUsersRequireAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.store.listUsers = func() ([]models.User, error) {
		return []models.User{{ID: 1, Username: "alice", PasswordHash: "secret-hash"}}, nil
	}
	ts.store.getUser = func(id int64) (models.User, error) {
		return models.User{ID: id, Username: "alice", IsAdmin: true}, nil
	}

	rec, _ := ts.do(http.MethodGet, "/api/v1/users", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := ts.do(http.MethodGet, "/api/v1/users", nil, map[string]string{"Authorization": "Bearer " + ts.token(1, true)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(env.Data), "secret-hash")
}

func TestAdminTokenOfChangedAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.store.listUsers = func() ([]models.User, error) { return []models.User{}, nil }
	admin := map[string]string{"Authorization": "Bearer " + ts.token(1, true)}

	ts.store.getUser = func(int64) (models.User, error) { return models.User{}, store.ErrNotFound }
	rec, env := ts.do(http.MethodGet, "/api/v1/users", nil, admin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "account no longer exists", env.Error)

	ts.store.getUser = func(id int64) (models.User, error) { return models.User{ID: id, IsAdmin: false}, nil }
	rec, env = ts.do(http.MethodGet, "/api/v1/users", nil, admin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", env.Error)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	ts.store.userByUsername = func(username string) (models.User, error) {
		if username != "alice" {
			return models.User{}, store.ErrNotFound
		}
		return models.User{ID: 5, Username: "alice", PasswordHash: hash, IsAdmin: true}, nil
	}
	noToken := map[string]string{"Authorization": ""}

	rec, env := ts.do(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"alice","password":"secret1"}`), noToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(5), res.UserID)
	claims, err := ts.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)

	rec, _ = ts.do(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"alice","password":"wrong"}`), noToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"mallory","password":"secret1"}`), noToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"alice"}`), noToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "bolt.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	rec, env := ts.do(http.MethodPost, "/api/v1/upload", &body, map[string]string{"Content-Type": mw.FormDataContentType()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"filename":"1737532800000-abcd1234-bolt.png"}`, string(env.Data))
	assert.Equal(t, "bolt.png", ts.files.name)
	assert.Equal(t, "png-bytes", ts.files.body)

	rec, _ = ts.do(http.MethodPost, "/api/v1/upload", strings.NewReader("{}"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.store.dashboard = func() (models.Dashboard, error) {
		return models.Dashboard{
			TotalInvoices:  2,
			Revenue:        decimal.RequireFromString("42.5"),
			RevenueToday:   decimal.Zero,
			RecentInvoices: []models.Invoice{{ID: 9, ProjectName: "Acme", InvoiceNb: "INV-9", Items: []models.InvoiceItem{}}},
		}, nil
	}

	rec, env := ts.do(http.MethodGet, "/api/v1/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, int64(2), d.TotalInvoices)
	assert.True(t, d.Revenue.Equal(decimal.RequireFromString("42.5")))
	require.Len(t, d.RecentInvoices, 1)
	assert.Equal(t, "INV-9", d.RecentInvoices[0].InvoiceNb)

	ts.store.dashboard = func() (models.Dashboard, error) {
		return models.Dashboard{}, &store.QueryError{Op: "dashboard totals", Err: errors.New("down")}
	}
	rec, _ = ts.do(http.MethodGet, "/api/v1/dashboard", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.store.createCategory = func(in models.CategoryInput) (models.Category, error) {
		if msg := in.Validate(); msg != "" {
			return models.Category{}, &store.ValidationError{Field: "name", Msg: "is required"}
		}
		return models.Category{ID: 3, Name: in.Name}, nil
	}

	rec, env := ts.do(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":" Tools "}`), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `"Tools"`, extract(t, env.Data, "name"))

	rec, env = ts.do(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":""}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name: is required", env.Error)
}

// extract returns the raw JSON of one field of an object.
func extract(t *testing.T, raw json.RawMessage, field string) string {
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return string(m[field])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/", "/api/v1/", "/api/v1"} {
		rec, _ := ts.do(http.MethodGet, path, nil, map[string]string{"X-API-KEY": "", "Authorization": ""})
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "running", path)
	}
}
