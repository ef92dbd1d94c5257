package config

import (
	"fmt"
	"time"
)

// SyncerConfig contains configuration for the settings syncer worker.
// The syncer propagates requirement configuration strings from PostgreSQL
// (source of truth) to Redis (eval plane L2 cache).
type SyncerConfig struct {
	Enabled  bool          `envconfig:"ENABLED" default:"true"`
	Interval time.Duration `envconfig:"INTERVAL" default:"10s"`
}

// Validate checks SyncerConfig fields for correctness.
func (c *SyncerConfig) Validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("syncer interval must be at least 1s, got %s", c.Interval)
	}
	return nil
}
