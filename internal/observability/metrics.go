package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NOTE: Currently, all metrics are defined globally here.
// This causes a harmless side-effect where a service (e.g., eval-plane)
// initializes metrics from other services (e.g., admin-plane) with zero values.

// namespace defines the global prefix for all metrics (e.g., promogate_...).
const namespace = "promogate"

// lowLatencyBuckets defines custom buckets for the checkout-facing eval plane.
// Standard buckets are too coarse (starting at 5ms), so we add 1ms and 2ms resolution.
// Range: 1ms to 500ms.
var lowLatencyBuckets = []float64{.001, .002, .005, .010, .015, .020, .025, .030, .050, .100, .500}

var (
	// -------------------------------------------------------------------------
	// ADMIN PLANE (HTTP)
	// -------------------------------------------------------------------------

	// AdminPlaneReqDuration measures the latency of HTTP requests.
	// Metric: promogate_admin_plane_http_handling_seconds
	AdminPlaneReqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "admin_plane",
		Name:      "http_handling_seconds",
		Help:      "Time taken to handle HTTP requests in Admin Plane",
		Buckets:   prometheus.DefBuckets, // Standard buckets are fine for Admin APIs (human speed)
	}, []string{"method", "path"})

	// AdminPlaneReqTotal counts the total number of HTTP requests.
	// Metric: promogate_admin_plane_http_requests_total
	AdminPlaneReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admin_plane",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests in Admin Plane",
	}, []string{"method", "path", "code"})

	// -------------------------------------------------------------------------
	// EVAL PLANE (HTTP + Cache)
	// -------------------------------------------------------------------------

	// EvalPlaneReqDuration measures the latency of requirement check requests.
	// Metric: promogate_eval_plane_http_handling_seconds
	EvalPlaneReqDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "http_handling_seconds",
		Help:      "Time taken to handle requirement check requests",
		Buckets:   lowLatencyBuckets, // Checkout path, < 20ms SLO
	}, []string{"method", "path"})

	// EvalPlaneReqTotal counts the total number of check requests.
	// Metric: promogate_eval_plane_http_requests_total
	EvalPlaneReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "http_requests_total",
		Help:      "Total requirement check requests",
	}, []string{"method", "path", "code"})

	// EvalPlaneDecisions counts check outcomes by validity and reason.
	// Metric: promogate_eval_plane_decisions_total
	EvalPlaneDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "decisions_total",
		Help:      "Total eligibility decisions by outcome and reason",
	}, []string{"valid", "reason"})

	// --- Cache L1 Metrics (Otter) ---

	EvalPlaneL1Hits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "l1_cache_hits_total",
		Help:      "Total L1 cache hits (in-memory)",
	})

	EvalPlaneL1Misses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "l1_cache_misses_total",
		Help:      "Total L1 cache misses",
	})

	// --- Cache L2 Metrics (Redis) ---

	EvalPlaneL2Hits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "l2_cache_hits_total",
		Help:      "Total L2 cache hits (Redis)",
	})

	EvalPlaneL2Misses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "l2_cache_misses_total",
		Help:      "Total L2 cache misses",
	})

	// EvalPlaneStoreFallbacks counts reads that fell through both caches to
	// PostgreSQL. A sustained rise points at a broken syncer.
	EvalPlaneStoreFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eval_plane",
		Name:      "store_fallbacks_total",
		Help:      "Total setting reads served directly from PostgreSQL",
	})

	// -------------------------------------------------------------------------
	// SYNCER (Workers)
	// -------------------------------------------------------------------------

	// SyncerCycleDuration measures how long one full propagation cycle takes.
	// Metric: promogate_syncer_cycle_duration_seconds
	SyncerCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of one full settings propagation cycle",
		Buckets:   prometheus.DefBuckets,
	})

	SyncerCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "cycles_total",
		Help:      "Total propagation cycles executed",
	}, []string{"status"}) // success, fail

	SyncerSettingsPropagated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "syncer",
		Name:      "settings_propagated_total",
		Help:      "Total settings written to Redis by the syncer",
	})
)
