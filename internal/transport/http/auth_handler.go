package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rackatlas/inventory-api/internal/auth/app"
	"github.com/rackatlas/inventory-api/internal/auth/domain"
)

// AuthHandler exposes the login and refresh endpoints.
type AuthHandler struct {
	auth   *app.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *app.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("handler", "auth"),
	}
}

// RegisterRoutes mounts the public auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "request body is empty")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password, clientContext(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		User:      result.User,
		ExpiresIn: result.ExpiresIn.String(),
	})
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeJSONError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	result, err := h.auth.Refresh(r.Context(), req.Token, clientContext(r))
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		User:      result.User,
		ExpiresIn: result.ExpiresIn.String(),
	})
}

// writeAuthError maps the auth error taxonomy to HTTP statuses. Anything
// unrecognized is a 500 with no detail; the cause stays in the server log.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		writeJSONError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountLocked),
		errors.Is(err, domain.ErrAccountDisabled):
		writeJSONError(w, http.StatusForbidden, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "auth request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func clientContext(r *http.Request) app.ClientContext {
	return app.ClientContext{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// clientIP prefers the first X-Forwarded-For hop set by the edge proxy.
func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
			return ip
		}
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, GenericErrorResponse{Error: message})
}
