package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// LastInvoiceNumber is the payload of GET /invoices/last.
type LastInvoiceNumber struct {
	InvoiceNb *string `json:"invoice_nb"`
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request, f store.InvoiceFilter) {
	invoices, err := h.store.ListInvoices(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// ListInvoices lists invoices matching the query filters
// @Summary      List invoices
// @Description  Get live invoices with owner and line items, newest first. Every supplied filter must match; the date range applies only when both bounds are given.
// @Tags         invoices
// @Produce      json
// @Param        userId       query     int     false  "Owner user id"
// @Param        startDate    query     string  false  "Created on or after (YYYY-MM-DD)"
// @Param        endDate      query     string  false  "Created on or before (YYYY-MM-DD)"
// @Param        invoiceNb    query     string  false  "Exact invoice number"
// @Param        projectName  query     string  false  "Case-insensitive substring of the project name"
// @Success      200          {object}  Response{data=[]models.Invoice}
// @Failure      400          {object}  Response{error=string}
// @Router       /invoices [get]
// @Router       /invoices/search [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := parseInvoiceFilter(r.URL.Query())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	h.listInvoices(w, r, f)
}

// ListUserInvoices lists the invoices of one user
// @Summary      List invoices of a user
// @Tags         invoices
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  Response{data=[]models.Invoice}
// @Router       /invoices/user/{userId} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListUserInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	h.listInvoices(w, r, store.InvoiceFilter{UserID: &id})
}

// ListInvoicesInRange lists invoices created within a date range
// @Summary      List invoices in a date range
// @Tags         invoices
// @Produce      json
// @Param        startDate  query     string  true  "First day (YYYY-MM-DD)"
// @Param        endDate    query     string  true  "Last day (YYYY-MM-DD)"
// @Success      200        {object}  Response{data=[]models.Invoice}
// @Failure      400        {object}  Response{error=string}
// @Router       /invoices/range [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListInvoicesInRange(w http.ResponseWriter, r *http.Request) {
	f, err := parseInvoiceFilter(r.URL.Query())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if f.StartDate == nil || f.EndDate == nil {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}
	h.listInvoices(w, r, store.InvoiceFilter{StartDate: f.StartDate, EndDate: f.EndDate})
}

// ListProjectInvoices lists invoices whose project name contains the path value
// @Summary      List invoices by project
// @Tags         invoices
// @Produce      json
// @Param        projectName  path      string  true  "Project name fragment"
// @Success      200          {object}  Response{data=[]models.Invoice}
// @Router       /invoices/project/{projectName} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListProjectInvoices(w http.ResponseWriter, r *http.Request) {
	h.listInvoices(w, r, store.InvoiceFilter{ProjectName: chi.URLParam(r, "projectName")})
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.store.GetInvoice(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// GetInvoiceByNumber retrieves a single invoice by its number
// @Summary      Get invoice by number
// @Tags         invoices
// @Produce      json
// @Param        invoiceNb  path      string  true  "Invoice number"
// @Success      200        {object}  Response{data=models.Invoice}
// @Failure      404        {object}  Response{error=string}
// @Router       /invoices/number/{invoiceNb} [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetInvoiceByNumber(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.GetInvoiceByNumber(r.Context(), chi.URLParam(r, "invoiceNb"))
	if err != nil {
		writeStoreError(w, r, err, "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// GetLastInvoiceNumber returns the most recently issued invoice number
// @Summary      Last invoice number
// @Description  Number of the newest invoice, or null when none exist. Clients derive the next number from it.
// @Tags         invoices
// @Produce      json
// @Success      200  {object}  Response{data=LastInvoiceNumber}
// @Router       /invoices/last [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) GetLastInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	nb, err := h.store.LastInvoiceNumber(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, LastInvoiceNumber{InvoiceNb: nb})
}

// CreateInvoice creates an invoice and its line items atomically
// @Summary      Create invoice
// @Description  Create an invoice header and all of its items in one transaction. The owner is the authenticated user. When total is omitted it is the sum of qty * price.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Failure      500      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization token not provided")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := models.ValidateInvoiceJSON(body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var input models.InvoiceInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	inv, err := h.store.CreateInvoice(r.Context(), claims.UserID, input)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	slog.InfoContext(r.Context(), "invoice created", "id", inv.ID, "invoice_nb", inv.InvoiceNb,
		"items", len(inv.Items), "user_id", claims.UserID, "app", AppFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, inv)
}

// PatchInvoice updates header fields of an invoice
// @Summary      Update invoice
// @Description  Update project_name and/or notes. Other keys are rejected.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id      path      int             true  "Invoice ID"
// @Param        fields  body      map[string]any  true  "Fields to change"
// @Success      200     {object}  Response{data=models.Invoice}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /invoices/{id} [patch]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) PatchInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	inv, err := h.store.PatchInvoice(r.Context(), id, fields)
	if err != nil {
		writeStoreError(w, r, err, "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// DeleteInvoice soft-deletes an invoice
// @Summary      Delete invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteInvoice(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "invoice not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// decodeFields reads a partial-update body. It writes the 400 itself.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var fields map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}
	return fields, true
}
