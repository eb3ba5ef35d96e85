package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gorillahandlers "github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Health reports that the service is up. It answers at the root and at the API base path.
// @Summary      Health check
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("invoicer API is running"))
}

// Routes builds the HTTP handler for the whole service.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.Health)

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Uploaded images
	if h.images != nil {
		r.Handle("/images/*", http.StripPrefix("/images/", h.images))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(h.APIKey)

			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)

				// Invoices
				r.Get("/invoices", h.ListInvoices)
				r.Post("/invoices", h.CreateInvoice)
				r.Get("/invoices/search", h.ListInvoices)
				r.Get("/invoices/last", h.GetLastInvoiceNumber)
				r.Get("/invoices/range", h.ListInvoicesInRange)
				r.Get("/invoices/user/{userId}", h.ListUserInvoices)
				r.Get("/invoices/number/{invoiceNb}", h.GetInvoiceByNumber)
				r.Get("/invoices/project/{projectName}", h.ListProjectInvoices)
				r.Get("/invoices/{id}", h.GetInvoice)
				r.Patch("/invoices/{id}", h.PatchInvoice)
				r.Delete("/invoices/{id}", h.DeleteInvoice)

				// Products
				r.Get("/products", h.ListProducts)
				r.Post("/products", h.CreateProduct)
				r.Get("/products/code/{code}", h.GetProductByCode)
				r.Get("/products/{id}", h.GetProduct)
				r.Patch("/products/{id}", h.PatchProduct)
				r.Delete("/products/{id}", h.DeleteProduct)

				// Categories
				r.Get("/categories", h.ListCategories)
				r.Post("/categories", h.CreateCategory)

				// Uploads
				r.Post("/upload", h.Upload)

				// Dashboard
				r.Get("/dashboard", h.GetDashboard)

				// Users
				r.Group(func(r chi.Router) {
					r.Use(h.RequireAdmin)
					r.Get("/users", h.ListUsers)
					r.Post("/users", h.CreateUser)
					r.Patch("/users/{id}", h.PatchUser)
					r.Delete("/users/{id}", h.DeleteUser)
				})
			})
		})
	})

	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-API-KEY"}),
	)(r)
}
