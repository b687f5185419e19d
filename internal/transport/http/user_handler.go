package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rackatlas/inventory-api/internal/auth/app"
	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/transport/http/middleware"
)

// UserHandler exposes the authenticated account endpoints: self lookup and
// admin provisioning.
type UserHandler struct {
	auth   *app.AuthService
	logger *slog.Logger
}

func NewUserHandler(auth *app.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		auth:   auth,
		logger: logger.With("handler", "users"),
	}
}

// HandleMe returns the account behind the request principal.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.auth.GetUser(r.Context(), principal.UserID)
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleCreate provisions a new account. Gated on manage:users at the router.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, err := h.auth.CreateUser(r.Context(), app.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGet looks an account up by id. Gated on manage:users at the router.
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	user, err := h.auth.GetUser(r.Context(), id)
	if err != nil {
		h.writeUserError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidRole):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateUser):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "user request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
