package handlers

import (
	"net/http"
)

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get counts of live invoices, products, categories and users, total and same-day revenue, and the newest invoices.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=models.Dashboard}
// @Failure      500  {object}  Response{error=string}
// @Router       /dashboard [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.Dashboard(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
