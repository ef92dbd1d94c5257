// Command promogate-syncer runs the background worker that polls requirement
// configurations out of PostgreSQL and propagates them to the Redis cache the
// Eval Plane reads from.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/config"
	"github.com/mpontes/promogate/internal/database"
	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/observability"
	"github.com/mpontes/promogate/internal/store"
	"github.com/mpontes/promogate/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		slog.Error("syncer terminated", slog.String("error", err.Error()))
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

	if !cfg.Syncer.Enabled {
		log.Warn("syncer is disabled by configuration, exiting")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	obs := observability.NewServer("promogate-syncer", log, &cfg.Observability,
		database.NewHealthChecker(pool),
		cache.NewHealthChecker(redisClient),
	)
	obs.Start()

	svc := syncer.New(log, syncer.Config{Interval: cfg.Syncer.Interval},
		store.NewPostgresSettingsStore(pool), redisCache)

	// Run blocks until the context is cancelled by SIGINT/SIGTERM.
	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("syncer failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("syncer stopped")
	return nil
}
