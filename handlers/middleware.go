package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/store"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg})
}

// writeStoreError maps a store error onto a status code. notFound is the message used for
// store.ErrNotFound.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *store.ValidationError
	var werr *store.WriteError
	var qerr *store.QueryError
	switch {
	case errors.As(err, &verr):
		msg := verr.Msg
		if verr.Field != "" {
			msg = verr.Field + ": " + msg
		}
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case store.IsUniqueViolation(err):
		slog.WarnContext(r.Context(), "unique constraint violated", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusConflict, "a record with the same unique value already exists")
	case errors.As(err, &werr):
		slog.ErrorContext(r.Context(), "write failed", "op", werr.Op, "error", werr.Err)
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &qerr):
		slog.ErrorContext(r.Context(), "query failed", "op", qerr.Op, "error", qerr.Err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type appKey struct{}

// AppFromContext returns the client app name resolved by APIKey.
func AppFromContext(ctx context.Context) string {
	app, _ := ctx.Value(appKey{}).(string)
	return app
}

// APIKey is middleware that requires a known X-API-KEY header and records which app sent it.
func (h *Handler) APIKey(next http.Handler) http.Handler {
	// If no keys are configured, skip the check
	if len(h.apiKeys) == 0 {
		slog.Warn("MOBILE_API_KEY and DESKTOP_API_KEY not set, API keys are not checked")
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		app, ok := h.apiKeys[key]
		if !ok {
			writeError(w, http.StatusForbidden, "invalid API key")
			return
		}
		slog.DebugContext(r.Context(), "api key accepted", "app", app)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), appKey{}, app)))
	})
}

// RequireAuth is middleware that enforces a valid bearer token.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authorization token not provided")
			return
		}
		claims, err := h.tokens.Parse(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin is middleware that lets only admin accounts through. It must run after
// RequireAuth. The account is re-read so a deleted or demoted admin is refused before the
// token expires.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok || !claims.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		u, err := h.store.GetUser(r.Context(), claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(r.Context(), "token of deleted account refused", "user_id", claims.UserID)
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		if err != nil {
			writeStoreError(w, r, err, "")
			return
		}
		if !u.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
