// Command promogate-eval runs the Eval Plane: the low-latency HTTP service
// the checkout backend calls to decide discount eligibility. Reads go through
// the tiered cache (memory -> Redis -> PostgreSQL).
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

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/config"
	"github.com/mpontes/promogate/internal/database"
	"github.com/mpontes/promogate/internal/evalapi"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/observability"
	"github.com/mpontes/promogate/internal/routing"
	"github.com/mpontes/promogate/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("eval plane terminated", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
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

	l1, err := cache.NewMemoryCache(cfg.Server.Eval.CacheCapacity, cfg.Server.Eval.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to build memory cache: %w", err)
	}
	defer l1.Close()

	// Repositories
	settings := store.NewPostgresSettingsStore(pool)
	requirements := store.NewPostgresRequirementsStore(pool)
	localization := store.NewPostgresLocalizationStore(pool)

	// Rule plugin wired to the tiered read path
	tiered := evalapi.NewTieredSettings(l1, redisCache, settings, log)
	rule := hasoneproduct.New(log, tiered, requirements, localization,
		routing.NewActionURLBuilder("/Admin"))

	api := evalapi.NewAPI(rule)

	obs := observability.NewServer("promogate-eval", log, &cfg.Observability,
		database.NewHealthChecker(pool),
		cache.NewHealthChecker(redisClient),
	)
	obs.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Eval.Host, cfg.Server.Eval.Port),
		Handler:           api.Router,
		ReadTimeout:       cfg.Server.Eval.ReadTimeout,
		WriteTimeout:      cfg.Server.Eval.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.Eval.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.Eval.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("eval plane listening", slog.String("addr", srv.Addr))

		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("eval server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down eval plane...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("eval server shutdown failed", slog.String("error", err.Error()))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("eval plane stopped")
	return nil
}
