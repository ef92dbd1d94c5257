package evalapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/observability"
)

// TieredSettings resolves configuration strings through the read path
// L1 (memory) -> L2 (Redis) -> PostgreSQL, filling L1 on the way back.
//
// L2 is populated by the syncer and by admin write-through, never by this
// reader, so a slow eval plane cannot poison the shared cache. The L1 TTL
// bounds how long a stale value can survive after a requirement changes.
type TieredSettings struct {
	l1     *cache.MemoryCache
	l2     cache.Service
	db     hasoneproduct.SettingsStore
	logger *slog.Logger
}

// Compile-time interface check.
var _ hasoneproduct.SettingsStore = (*TieredSettings)(nil)

// NewTieredSettings builds the read path.
// Panics on nil dependencies (programmer error, fail fast).
func NewTieredSettings(l1 *cache.MemoryCache, l2 cache.Service, db hasoneproduct.SettingsStore, log *slog.Logger) *TieredSettings {
	if l1 == nil {
		panic("evalapi: l1 cache cannot be nil")
	}
	if l2 == nil {
		panic("evalapi: l2 cache cannot be nil")
	}
	if db == nil {
		panic("evalapi: settings store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TieredSettings{l1: l1, l2: l2, db: db, logger: log}
}

// GetByKey implements hasoneproduct.SettingsStore.
//
// A key missing from both caches falls through to PostgreSQL; a key missing
// everywhere reports found=false, which the rule treats as "no restriction".
// Negative results are cached in L1 as empty strings so repeated checks of an
// unconfigured requirement stay off the database.
func (t *TieredSettings) GetByKey(ctx context.Context, key string) (string, bool, error) {
	// L1: in-process, lock-free.
	if value, found := t.l1.Get(key); found {
		observability.EvalPlaneL1Hits.Inc()
		return value, true, nil
	}
	observability.EvalPlaneL1Misses.Inc()

	// L2: Redis, shared across eval plane replicas.
	value, err := t.l2.GetSetting(ctx, key)
	if err == nil {
		observability.EvalPlaneL2Hits.Inc()
		t.l1.Set(key, value)
		return value, true, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		// Redis down is not fatal for reads: PostgreSQL still has the truth.
		t.logger.Warn("l2 cache read failed, falling back to store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	observability.EvalPlaneL2Misses.Inc()

	// PostgreSQL: source of truth.
	observability.EvalPlaneStoreFallbacks.Inc()
	value, found, err := t.db.GetByKey(ctx, key)
	if err != nil {
		return "", false, err
	}

	// Cache fill. An absent setting is cached as the empty string, which the
	// rule already treats as "no restriction configured".
	t.l1.Set(key, value)

	return value, found, nil
}
