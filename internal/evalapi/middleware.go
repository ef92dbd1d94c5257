package evalapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/observability"
)

// RequestLogger handles structured logging for the eval plane.
// It performs three tasks for observability:
// 1. Traceability: Extracts or generates a Request ID.
// 2. Context Injection: Injects a logger into the context for the handler to use.
// 3. Telemetry: Logs the duration and status of the request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 1. Resolve Request ID
		// The checkout backend forwards its own id via X-Request-Id.
		// If missing, we generate one to ensure traceability is never broken.
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}

		// 2. Create Contextual Logger
		// This is cheap (shallow copy of the handler).
		reqLogger := slog.Default().With(
			slog.String("request_id", reqID),
			slog.String("path", r.URL.Path),
		)

		// 3. Inject Logger into Context
		// The handler can now call logger.FromContext(ctx).
		ctx := logger.WithContext(r.Context(), reqLogger)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		// 4. Log Outcome
		// 2xx/4xx are expected traffic; only 5xx is a system failure.
		status := ww.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		reqLogger.Log(ctx, level, "check request completed",
			slog.String("method", r.Method),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_ip", r.RemoteAddr),
		)
	})
}

// MetricsMiddleware records request latency and counts per route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}

		observability.EvalPlaneReqDuration.
			WithLabelValues(r.Method, path).
			Observe(time.Since(start).Seconds())
		observability.EvalPlaneReqTotal.
			WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).
			Inc()
	})
}
