package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/token"
	"github.com/rackatlas/inventory-api/internal/transport/http/middleware"
)

// NewRouter assembles the API surface. Inventory entity routers (devices,
// models, floors, connections, attributes) mount under the same protected
// group with their own RequirePermission instances.
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	tokens *token.Service,
	registry *domain.PermissionRegistry,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", authHandler.RegisterRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, logger))
			r.Get("/me", userHandler.HandleMe)

			manageUsers := middleware.RequirePermission(registry, domain.PermissionManageUsers, logger)
			r.With(manageUsers).Post("/", userHandler.HandleCreate)
			r.With(manageUsers).Get("/{userID}", userHandler.HandleGet)
		})
	})

	return r
}
