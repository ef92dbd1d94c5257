package config

import (
	"fmt"
	"strings"
	"time"
)

// ObservabilityConfig configures the sidecar HTTP server that exposes probes
// and Prometheus metrics. Every binary runs one on its own port.
type ObservabilityConfig struct {
	// Port the observability server listens on.
	Port string `envconfig:"PORT" default:"9090"`

	// Timeout bounds probe handling and server read/write/idle.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"5s" validate:"min=1s"`

	// LivenessPath answers as long as the process is serving.
	LivenessPath string `envconfig:"LIVENESS_PATH" default:"/healthz"`

	// ReadinessPath answers 200 only when Postgres and Redis are reachable.
	ReadinessPath string `envconfig:"READINESS_PATH" default:"/readyz"`

	// MetricsPath serves the Prometheus scrape endpoint.
	MetricsPath string `envconfig:"METRICS_PATH" default:"/metrics"`
}

// Validate checks ObservabilityConfig fields for correctness.
func (o *ObservabilityConfig) Validate() error {
	if err := validatePort(o.Port, "observability"); err != nil {
		return err
	}
	for _, path := range []string{o.LivenessPath, o.ReadinessPath, o.MetricsPath} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("observability paths must start with '/', got %q", path)
		}
	}
	return nil
}
