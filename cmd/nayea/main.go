package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nayea-id/nayea/internal/app"
	"github.com/nayea-id/nayea/internal/auth"
	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/gate"
	"github.com/nayea-id/nayea/internal/guard"
	"github.com/nayea-id/nayea/internal/identity"
	"github.com/nayea-id/nayea/internal/observability"
	"github.com/nayea-id/nayea/internal/platform/cache"
	"github.com/nayea-id/nayea/internal/session"
	"github.com/nayea-id/nayea/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := authz.Validate(); err != nil {
		// Lookups fail closed on gaps, so an incomplete matrix denies
		// rather than grants; surface it loudly instead of refusing traffic.
		logger.Error("capability matrix incomplete", slog.Any("error", err))
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Sessions cannot be registered or revoked until Redis comes back,
		// but the public surface still works.
		logger.Warn("redis unavailable", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenManager, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		logger.Error("session manager", slog.Any("error", err))
		os.Exit(1)
	}
	sessionStore := session.NewStore(redisClient, cfg.SessionTTL)

	backend := identity.NewClient(cfg.AuthAPIBaseURL, cfg.AuthHTTPTimeout, logger)
	sessions := identity.NewService(backend, tokenManager, sessionStore, logger)

	metrics := observability.NewMetrics()
	routeGuard := guard.Guard{Sessions: sessions, Logger: logger, Metrics: metrics}

	authHandler := auth.NewHandler(logger, sessions, metrics)
	permissionsHandler := gate.NewPermissionsHandler(logger)
	gates := gate.Middleware{Logger: logger}
	storeHandler := store.NewHandler(logger, gates)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Guard:              routeGuard,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		StoreHandler:       storeHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
