package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/models"
)

// ListUsers lists all accounts
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  Response{data=[]models.User}
// @Failure      403  {object}  Response{error=string}
// @Router       /users [get]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUser creates a new account
// @Summary      Create user
// @Description  The password is stored as a bcrypt hash.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      models.UserInput  true  "Account contents"
// @Success      201   {object}  Response{data=models.User}
// @Failure      400   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Router       /users [post]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input models.UserInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	u, err := h.store.CreateUser(r.Context(), input)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// PatchUser updates some fields of an account
// @Summary      Update user
// @Description  Update any of name, username, password, role, is_admin. A new password is re-hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path      int             true  "User ID"
// @Param        fields  body      map[string]any  true  "Fields to change"
// @Success      200     {object}  Response{data=models.User}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /users/{id} [patch]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}
	u, err := h.store.PatchUser(r.Context(), id, fields)
	if err != nil {
		writeStoreError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteUser soft-deletes an account
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /users/{id} [delete]
// @Security     ApiKeyAuth
// @Security     BearerAuth
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
