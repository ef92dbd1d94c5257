package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// liveness proves the process is up and serving. The orchestrator restarts
// the pod when this stops answering.
func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness fans out to every registered Checker in parallel and answers 503
// if any dependency is down, which takes the instance out of rotation.
func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Timeout)
	defer cancel()

	type probeResult struct {
		name string
		err  error
	}
	results := make([]probeResult, len(s.checkers))

	var wg sync.WaitGroup
	for i, checker := range s.checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = probeResult{name: c.Name(), err: c.Check(ctx)}
		}(i, checker)
	}
	wg.Wait()

	healthy := true
	components := make(map[string]string, len(results))
	for _, res := range results {
		if res.err == nil {
			components[res.name] = "up"
			continue
		}
		healthy = false
		components[res.name] = fmt.Sprintf("down: %v", res.err)
		// Warn, not Error: the orchestrator retries and alerts on its own.
		s.logger.Warn("readiness check failed",
			slog.String("service", s.service),
			slog.String("component", res.name),
			slog.String("error", res.err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	// The body is for humans debugging a failing probe; the orchestrator only
	// reads the status code, so the encode error is not worth surfacing.
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service": s.service,
		"status":  components,
	})
}
