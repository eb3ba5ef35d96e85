package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/models"
)

// ListCategories lists all categories
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Category}
// @Router       /categories [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a new category
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        category  body      models.CategoryInput  true  "Category contents"
// @Success      201       {object}  Response{data=models.Category}
// @Failure      400       {object}  Response{error=string}
// @Router       /categories [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input models.CategoryInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := h.store.CreateCategory(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
