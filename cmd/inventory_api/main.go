package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rackatlas/inventory-api/internal/auth/app"
	"github.com/rackatlas/inventory-api/internal/auth/audit"
	"github.com/rackatlas/inventory-api/internal/auth/domain"
	"github.com/rackatlas/inventory-api/internal/auth/lockout"
	"github.com/rackatlas/inventory-api/internal/auth/password"
	"github.com/rackatlas/inventory-api/internal/auth/repository/postgres"
	"github.com/rackatlas/inventory-api/internal/auth/token"
	"github.com/rackatlas/inventory-api/internal/platform/config"
	"github.com/rackatlas/inventory-api/internal/platform/database"
	"github.com/rackatlas/inventory-api/internal/platform/logger"
	"github.com/rackatlas/inventory-api/internal/platform/messagebroker"
	transporthttp "github.com/rackatlas/inventory-api/internal/transport/http"
)

func main() {
	cfg, err := config.Load("inventory-api")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("inventory API starting", "port", cfg.HTTPPort, "log_level", cfg.LogLevel)

	dbPool, err := database.NewDBPool(context.Background(), cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("connected to PostgreSQL")

	// Audit entries go to NATS when a broker is configured; otherwise they
	// land in the application log. Either way the sink is best-effort.
	var auditRecorder audit.Recorder = audit.NewSlogRecorder(appLogger)
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, "inventory-api", appLogger)
		if err != nil {
			appLogger.Warn("NATS unavailable, audit entries go to the application log", "error", err)
		} else {
			defer natsClient.Close()
			auditRecorder = audit.NewNATSRecorder(natsClient, cfg.AuditSubject)
			appLogger.Info("connected to NATS", "audit_subject", cfg.AuditSubject)
		}
	}

	clock := clockwork.NewRealClock()
	userRepo := postgres.NewPgUserRepository(dbPool)
	registry := domain.NewPermissionRegistry()
	hasher := password.NewHasher(cfg.BcryptCost, password.Policy{MinLength: cfg.PasswordMinLength})
	tokenService := token.NewService(cfg.JWTSecret, cfg.TokenTTL(), clock)
	lockoutPolicy := lockout.NewPolicy(userRepo, clock, cfg.LockoutThreshold, cfg.LockoutDuration(), appLogger)
	authService := app.NewAuthService(userRepo, hasher, tokenService, registry, lockoutPolicy, auditRecorder, clock, appLogger)

	authHandler := transporthttp.NewAuthHandler(authService, appLogger)
	userHandler := transporthttp.NewUserHandler(authService, appLogger)
	router := transporthttp.NewRouter(authHandler, userHandler, tokenService, registry, appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quitChan
	appLogger.Info("shutdown signal received", "signal", receivedSignal.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", "error", err)
	}
	appLogger.Info("inventory API shut down")
}
