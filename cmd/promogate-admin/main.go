// Command promogate-admin runs the Admin Plane: the authenticated REST API
// used by store administrators to manage discount requirements and the rule
// plugin lifecycle.
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

	"github.com/joho/godotenv"

	"github.com/mpontes/promogate/internal/adminapi"
	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/config"
	"github.com/mpontes/promogate/internal/database"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/observability"
	"github.com/mpontes/promogate/internal/routing"
	"github.com/mpontes/promogate/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("admin plane terminated", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(&cfg.App)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infrastructure
	pool, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(logger.WithContext(ctx, log), &cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	redisCache := cache.NewRedisCache(redisClient)
	defer func() { _ = redisCache.Close() }()

	// Repositories
	settings := store.NewPostgresSettingsStore(pool)
	requirements := store.NewPostgresRequirementsStore(pool)
	localization := store.NewPostgresLocalizationStore(pool)

	// Rule plugin
	rule := hasoneproduct.New(log, settings, requirements, localization,
		routing.NewActionURLBuilder("/Admin"))

	// API
	// Authentication is only skipped outside production when no key is set,
	// which keeps local development friction-free; config validation already
	// rejects a production deployment without a key hash.
	skipAuth := cfg.Server.Admin.APIKeyHash == "" && cfg.App.Environment != config.EnvironmentProduction
	if skipAuth {
		log.Warn("admin API authentication disabled: no API key hash configured")
	}
	api := adminapi.NewAPIWithConfig(requirements, settings, redisCache, rule,
		cfg.Server.Admin.APIKeyHash, skipAuth)

	// Observability server (probes + metrics) on its own port
	obs := observability.NewServer("promogate-admin", log, &cfg.Observability,
		database.NewHealthChecker(pool),
		cache.NewHealthChecker(redisClient),
	)
	obs.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Admin.Host, cfg.Server.Admin.Port),
		Handler:           api.Router,
		ReadTimeout:       cfg.Server.Admin.ReadTimeout,
		WriteTimeout:      cfg.Server.Admin.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.Admin.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.Admin.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.Admin.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("admin plane listening", slog.String("addr", srv.Addr))

		var serveErr error
		if cfg.Server.Admin.TLSEnabled {
			serveErr = srv.ListenAndServeTLS(cfg.Server.Admin.TLSCert, cfg.Server.Admin.TLSKey)
		} else {
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down admin plane...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", slog.String("error", err.Error()))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("admin plane stopped")
	return nil
}
