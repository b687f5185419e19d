package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/token"
)

// contextKey is a private type so context values cannot collide with other
// packages.
type contextKey string

const principalContextKey = contextKey("authPrincipal")

// Principal is the authenticated identity attached to the request context by
// Authenticate. It lives only for the duration of the request.
type Principal struct {
	UserID      string
	Username    string
	Role        domain.Role
	Permissions []domain.Permission
}

// PrincipalFromContext returns the request principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}

// ContextWithPrincipal is exported for handler tests.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// Authenticate verifies the bearer token on each request and attaches the
// decoded claims as the request principal. It never touches the database.
func Authenticate(tokens *token.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, domain.ErrMissingToken.Error())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, domain.ErrTokenExpired.Error())
					return
				}
				logger.WarnContext(r.Context(), "token verification failed", "error", err)
				writeError(w, http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
				return
			}

			principal := Principal{
				UserID:      claims.Subject,
				Username:    claims.Username,
				Role:        claims.Role,
				Permissions: claims.Permissions,
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on one required permission. Authenticate
// must run earlier in the chain; a missing principal is a 401.
func RequirePermission(registry *domain.PermissionRegistry, required domain.Permission, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "principal missing from context; Authenticate must run first")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !registry.HasPermission(principal.Permissions, required) {
				logger.WarnContext(r.Context(), "permission denied",
					"user_id", principal.UserID,
					"role", principal.Role,
					"required_permission", required)
				writeError(w, http.StatusForbidden, domain.ErrPermissionDenied.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
