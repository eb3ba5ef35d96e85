package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
	"github.com/satheeshds/invoicer/store"
)

// Login exchanges credentials for a bearer token
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      models.LoginInput  true  "Username and password"
// @Success      200          {object}  Response{data=models.LoginResult}
// @Failure      400          {object}  Response{error=string}
// @Failure      401          {object}  Response{error=string}
// @Router       /login [post]
// @Security     ApiKeyAuth
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	u, err := h.store.GetUserByUsername(r.Context(), input.Username)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(input.Password, u.PasswordHash)) {
		slog.InfoContext(r.Context(), "login rejected", "username", input.Username)
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Username, u.IsAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResult{Token: token, UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
}
