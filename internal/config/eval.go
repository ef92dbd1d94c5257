package config

import (
	"fmt"
	"time"
)

// EvalPlaneConfig configures the HTTP server that serves cart eligibility checks.
// This is the hot path at checkout time, so it also carries the L1 cache tuning.
type EvalPlaneConfig struct {
	Port              string        `envconfig:"PORT" default:"8081"`
	Host              string        `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"2s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	// L1 cache (in-memory, per-process) for requirement configuration strings.
	// CacheTTL is the safety net for eventual consistency with the syncer.
	CacheCapacity int           `envconfig:"CACHE_CAPACITY" default:"10000" validate:"min=1"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`
}

// Validate performs validation on the EvalPlaneConfig.
func (c *EvalPlaneConfig) Validate() error {
	// Validate port
	if err := validatePort(c.Port, "eval plane"); err != nil {
		return err
	}

	// Validate host
	if err := validateHost(c.Host, "eval plane"); err != nil {
		return err
	}

	if c.CacheTTL < time.Second {
		return fmt.Errorf("eval plane cache TTL must be at least 1s, got %s", c.CacheTTL)
	}

	return nil
}
