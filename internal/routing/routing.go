// Package routing builds admin route paths for plugin configuration screens.
// It is the concrete RoutingHelper collaborator: plugins only know action and
// controller names, the admin shell owns the URL shape.
package routing

import (
	"fmt"
	"net/url"
)

// ActionURLBuilder builds "{BasePath}/{controller}/{action}?{values}" paths.
// Route values are encoded sorted by key, so built URLs are deterministic.
type ActionURLBuilder struct {
	// BasePath is the admin area mount point, e.g. "/Admin".
	BasePath string
}

// NewActionURLBuilder creates a builder rooted at basePath.
func NewActionURLBuilder(basePath string) *ActionURLBuilder {
	return &ActionURLBuilder{BasePath: basePath}
}

// BuildActionURL returns the path for an action on a controller with the
// given route values.
func (b *ActionURLBuilder) BuildActionURL(action, controller string, routeValues map[string]string) string {
	path := fmt.Sprintf("%s/%s/%s", b.BasePath, controller, action)
	if len(routeValues) == 0 {
		return path
	}

	values := url.Values{}
	for k, v := range routeValues {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}
