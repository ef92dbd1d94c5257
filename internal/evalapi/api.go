// Package evalapi implements the HTTP Eval Plane for discount requirement
// checks. It is the checkout hot path: reads are served from the tiered
// cache and the handler does no database writes.
package evalapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mpontes/promogate/internal/hasoneproduct"
)

// API holds the router and the rule for the Eval Plane.
type API struct {
	// Router is the Chi multiplexer that handles HTTP requests.
	Router *chi.Mux

	// rule performs the actual requirement validation. Its settings store
	// should be the tiered cache lookup (see TieredSettings).
	rule *hasoneproduct.Rule
}

// NewAPI creates the Eval Plane API.
// Panics if rule is nil (programmer error, fail fast).
func NewAPI(rule *hasoneproduct.Rule) *API {
	if rule == nil {
		panic("evalapi: rule cannot be nil")
	}

	api := &API{
		Router: chi.NewRouter(),
		rule:   rule,
	}

	api.configureRoutes()
	return api
}

// configureRoutes registers the middleware stack and endpoints.
// No authentication: the eval plane is an internal service reached only by
// the checkout backend, never exposed publicly.
func (a *API) configureRoutes() {
	a.Router.Use(RequestLogger)
	a.Router.Use(MetricsMiddleware)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(render.SetContentType(render.ContentTypeJSON))

	a.Router.Get("/health", a.handleHealthCheck)

	a.Router.Post("/v1/requirements/check", a.handleCheck)
}

func (a *API) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}
