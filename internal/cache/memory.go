package cache

import (
	"time"

	"github.com/maypok86/otter"
)

// MemoryCache is the eval plane's L1: an otter (S3-FIFO) cache holding raw
// configuration strings keyed by setting name. Misses are stored as empty
// strings, which the rule already reads as "no restriction configured".
type MemoryCache struct {
	store otter.Cache[string, string]
}

// NewMemoryCache builds the L1 with a hard item cap and a TTL. The TTL is
// what bounds staleness relative to Postgres, since nothing invalidates L1
// entries on admin writes.
func NewMemoryCache(capacity int, ttl time.Duration) (*MemoryCache, error) {
	cache, err := otter.MustBuilder[string, string](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, err
	}

	return &MemoryCache{store: cache}, nil
}

// Get returns the cached configuration string and whether it was present.
func (c *MemoryCache) Get(key string) (string, bool) {
	return c.store.Get(key)
}

// Set stores a configuration string under the cache-wide TTL.
func (c *MemoryCache) Set(key, value string) {
	c.store.Set(key, value)
}

// Del drops one entry.
func (c *MemoryCache) Del(key string) {
	c.store.Delete(key)
}

// Close stops otter's background maintenance goroutines.
func (c *MemoryCache) Close() {
	c.store.Close()
}
