package adminapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/logger"
)

// handleInstall processes the POST /api/v1/plugin/install request.
// It registers the rule's localized UI strings. The operation is idempotent,
// so re-installing an installed plugin succeeds.
func (a *API) handleInstall(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := a.rule.Install(r.Context()); err != nil {
		log.Error("plugin install failed", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Plugin install failed",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{
		"status": "installed",
		"rule":   hasoneproduct.SystemName,
	})
}

// handleUninstall processes the POST /api/v1/plugin/uninstall request.
// It removes every discount requirement owned by this rule along with the
// rule's localized UI strings.
func (a *API) handleUninstall(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := a.rule.Uninstall(r.Context()); err != nil {
		log.Error("plugin uninstall failed", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Plugin uninstall failed",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{
		"status": "uninstalled",
		"rule":   hasoneproduct.SystemName,
	})
}
