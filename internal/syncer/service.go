// Package syncer implements the background worker that propagates discount
// requirement configurations from the Admin Plane (PostgreSQL) to the Eval
// Plane cache (Redis).
package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/observability"
	"github.com/mpontes/promogate/internal/store"
)

// settingPrefix selects the settings the syncer owns: every requirement
// configuration of the "has one product" rule.
var settingPrefix = hasoneproduct.SystemName + "-"

// Config holds the configuration for the Syncer service.
type Config struct {
	// Interval is the duration between sync cycles (polling).
	Interval time.Duration
}

// Service orchestrates the synchronization process.
type Service struct {
	logger *slog.Logger
	config Config
	repo   store.SettingsRepository
	cache  cache.Service
}

// New creates a new Syncer service.
func New(logger *slog.Logger, cfg Config, repo store.SettingsRepository, cacheSvc cache.Service) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	if repo == nil {
		panic("syncer: settings repository cannot be nil")
	}
	if cacheSvc == nil {
		panic("syncer: cache service cannot be nil")
	}

	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Second // Safe default
	}

	return &Service{
		logger: logger,
		config: cfg,
		repo:   repo,
		cache:  cacheSvc,
	}
}

// Run starts the syncer loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting syncer service", slog.String("interval", s.config.Interval.String()))

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run once immediately on startup
	if err := s.sync(ctx); err != nil {
		s.logger.Error("initial sync failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("syncer service stopping...")
			return nil
		case <-ticker.C:
			if err := s.sync(ctx); err != nil {
				// We log the error but don't stop the worker.
				// Retry on next tick.
				s.logger.Error("sync cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// sync performs a single synchronization cycle.
func (s *Service) sync(ctx context.Context) error {
	start := time.Now()

	// 1. Read from Source of Truth (Postgres)
	settings, err := s.repo.ListByPrefix(ctx, settingPrefix)
	if err != nil {
		observability.SyncerCyclesTotal.WithLabelValues("fail").Inc()
		return err
	}

	// 2. Write to Eval Plane Cache (Redis)
	// We overwrite the keys; the eval plane's L1 TTL bounds staleness.
	count := 0
	errorCount := 0

	for _, setting := range settings {
		if err := s.cache.SetSetting(ctx, setting.Name, setting.Value); err != nil {
			s.logger.Warn("failed to sync setting",
				slog.String("name", setting.Name),
				slog.String("error", err.Error()),
			)
			errorCount++
			continue // Try next setting, don't abort entire batch
		}
		count++
	}

	observability.SyncerCycleDuration.Observe(time.Since(start).Seconds())
	observability.SyncerSettingsPropagated.Add(float64(count))
	if errorCount > 0 {
		observability.SyncerCyclesTotal.WithLabelValues("fail").Inc()
	} else {
		observability.SyncerCyclesTotal.WithLabelValues("success").Inc()
	}

	if count > 0 || errorCount > 0 {
		s.logger.Info("sync cycle completed",
			slog.Int("synced", count),
			slog.Int("errors", errorCount),
			slog.String("duration", time.Since(start).String()),
		)
	}
	return nil
}
