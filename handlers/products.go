package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// ListProducts lists products matching the query filters
// @Summary      List products
// @Description  Get live products with their category, newest first. An id parameter returns just that product.
// @Tags         products
// @Produce      json
// @Param        id          query     int     false  "Product ID, overrides every other filter"
// @Param        name        query     string  false  "Case-insensitive substring of the name"
// @Param        categoryid  query     int     false  "Category ID"
// @Param        brand       query     string  false  "Case-insensitive substring of the brand"
// @Param        code        query     string  false  "Exact catalog code"
// @Param        unit        query     string  false  "Exact unit"
// @Param        minPrice    query     number  false  "Lowest price, inclusive"
// @Param        maxPrice    query     number  false  "Highest price, inclusive"
// @Param        startDate   query     string  false  "Created on or after (YYYY-MM-DD)"
// @Param        endDate     query     string  false  "Created on or before (YYYY-MM-DD)"
// @Success      200         {object}  Response{data=[]models.Product}
// @Failure      400         {object}  Response{error=string}
// @Router       /products [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := q.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "id: must be a positive integer")
			return
		}
		p, err := h.store.GetProduct(r.Context(), id)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, []models.Product{p})
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusOK, []models.Product{})
		default:
			writeStoreError(w, r, err, "")
		}
		return
	}

	f, err := parseProductFilter(q)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	products, err := h.store.ListProducts(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct retrieves a single product by ID
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  Response{data=models.Product}
// @Failure      404  {object}  Response{error=string}
// @Router       /products/{id} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetProductByCode retrieves a single product by catalog code
// @Summary      Get product by code
// @Tags         products
// @Produce      json
// @Param        code  path      string  true  "Catalog code"
// @Success      200   {object}  Response{data=models.Product}
// @Failure      404   {object}  Response{error=string}
// @Router       /products/code/{code} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetProductByCode(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProductByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, r, err, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct creates a new product
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body      models.ProductInput  true  "Product contents"
// @Success      201      {object}  Response{data=models.Product}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /products [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := h.store.CreateProduct(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// PatchProduct updates some fields of a product
// @Summary      Update product
// @Description  Update any of name, code, image_url, price, qty, brand, unit, category_id. Other keys are rejected.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path      int             true  "Product ID"
// @Param        fields  body      map[string]any  true  "Fields to change"
// @Success      200     {object}  Response{data=models.Product}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /products/{id} [patch]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	p, err := h.store.PatchProduct(r.Context(), id, fields)
	if err != nil {
		writeStoreError(w, r, err, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct soft-deletes a product
// @Summary      Delete product
// @Tags         products
// @Param        id   path  int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  Response{error=string}
// @Router       /products/{id} [delete]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
