// Package adminapi implements the REST API for the Promogate Admin Plane.
// Store administrators manage discount requirements and the rule plugin
// lifecycle through it.
package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mpontes/promogate/internal/cache"
	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/store"
)

// API is the main struct that holds dependencies and the router for the Admin Plane.
// It follows the Dependency Injection pattern to facilitate testing.
type API struct {
	// Router is the Chi multiplexer that handles HTTP requests.
	Router *chi.Mux

	// requirements is the data access layer for discount requirements.
	// We use the interface type to allow for mocking in unit tests.
	requirements store.RequirementsRepository

	// settings persists the configuration string of each requirement.
	settings store.SettingsRepository

	// cache receives best-effort write-through of configuration changes so the
	// eval plane sees them before the next syncer cycle.
	cache cache.Service

	// rule exposes the plugin surface (configuration URL, install, uninstall).
	rule *hasoneproduct.Rule

	// apiKeyHash is the SHA-256 hash of the valid API key.
	// Used for authentication in production environments.
	apiKeyHash string

	// skipAuth disables authentication when true (test/dev environments only).
	// Production environments should always set this to false.
	skipAuth bool
}

// NewAPI creates a new API instance with authentication enabled by default.
// The apiKeyHash parameter must be the SHA-256 hash of the API key.
func NewAPI(requirements store.RequirementsRepository, settings store.SettingsRepository, cacheSvc cache.Service, rule *hasoneproduct.Rule, apiKeyHash string) *API {
	return NewAPIWithConfig(requirements, settings, cacheSvc, rule, apiKeyHash, false)
}

// NewAPIWithConfig creates a new API instance with explicit control over authentication.
// This constructor is primarily used in tests to disable authentication.
//
// Panics if:
//   - any dependency is nil
//   - apiKeyHash is empty when skipAuth is false
func NewAPIWithConfig(requirements store.RequirementsRepository, settings store.SettingsRepository, cacheSvc cache.Service, rule *hasoneproduct.Rule, apiKeyHash string, skipAuth bool) *API {
	// We check the interfaces explicitly.
	// An interface is only nil if it has no underlying type and no value.
	if requirements == nil {
		panic("adminapi: requirements repository cannot be nil")
	}
	if settings == nil {
		panic("adminapi: settings repository cannot be nil")
	}
	if cacheSvc == nil {
		panic("adminapi: cache service cannot be nil")
	}
	if rule == nil {
		panic("adminapi: rule cannot be nil")
	}

	// Validate authentication configuration
	if !skipAuth && apiKeyHash == "" {
		panic("adminapi: apiKeyHash cannot be empty when authentication is enabled")
	}

	api := &API{
		Router:       chi.NewRouter(),
		requirements: requirements,
		settings:     settings,
		cache:        cacheSvc,
		rule:         rule,
		apiKeyHash:   apiKeyHash,
		skipAuth:     skipAuth,
	}

	api.configureRoutes()
	return api
}

// configureRoutes registers the global middleware stack and API endpoints.
func (a *API) configureRoutes() {
	// 1. Global Middleware Stack
	// RequestID: Adds a unique ID to each request context (essential for tracing).
	a.Router.Use(middleware.RequestID)
	// RealIP: correctly sets the IP if behind a proxy/LB.
	a.Router.Use(middleware.RealIP)
	// Logger: Logs request method, path, status, and duration.
	a.Router.Use(RequestLogger)
	// Metrics: Records request counts and latency per route.
	a.Router.Use(MetricsMiddleware)
	// Recoverer: Prevents the server from crashing on panics, returning 500 instead.
	a.Router.Use(middleware.Recoverer)
	// Content-Type: Forces JSON content type for API responses.
	a.Router.Use(render.SetContentType(render.ContentTypeJSON))

	// 2. Public Routes (no authentication required)
	a.Router.Get("/health", a.handleHealthCheck)

	// 3. Protected API V1 Routes (authentication required)
	a.Router.Route("/api/v1", func(r chi.Router) {
		// Apply authentication middleware to all /api/v1/* routes
		r.Use(a.authenticateAPIKey)

		r.Route("/requirements", func(r chi.Router) {
			r.Post("/", a.handleCreateRequirement)
			r.Get("/", a.handleListRequirements)
			r.Get("/configure-url", a.handleConfigureURL)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.handleGetRequirement)
				r.Patch("/", a.handleUpdateRequirement)
				r.Delete("/", a.handleDeleteRequirement)
			})
		})

		r.Route("/plugin", func(r chi.Router) {
			r.Post("/install", a.handleInstall)
			r.Post("/uninstall", a.handleUninstall)
		})
	})
}

// handleHealthCheck verifies if the service is serving HTTP.
// Deep dependency checks live on the observability server's readiness probe.
func (a *API) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}
