// Package hasoneproduct implements the "has one product" discount requirement
// rule: a discount applies only when the customer's shopping cart contains at
// least one product from an admin-configured restricted list, optionally with
// quantity constraints.
//
// The rule consumes its platform services through narrow interfaces so that
// persistence, caching and routing remain swappable and mockable.
package hasoneproduct

import "context"

// SettingsStore is the key-value configuration lookup the rule reads its
// restricted-product string from.
type SettingsStore interface {
	// GetByKey returns the setting value and whether it exists.
	// A missing setting is not an error.
	GetByKey(ctx context.Context, key string) (string, bool, error)
}

// DiscountRequirement is a named, pluggable rule attached to a discount.
type DiscountRequirement struct {
	ID             int64
	DiscountID     int64
	RuleSystemName string
}

// DiscountRequirementStore manages discount requirement records.
type DiscountRequirementStore interface {
	// GetAllRequirements returns every requirement record, regardless of rule.
	GetAllRequirements(ctx context.Context) ([]DiscountRequirement, error)

	// Delete removes a requirement record.
	Delete(ctx context.Context, requirement DiscountRequirement) error
}

// LocalizationResourceStore manages the localized UI strings the configuration
// screen renders.
type LocalizationResourceStore interface {
	// AddOrUpdate creates the resource if absent, otherwise updates its value.
	AddOrUpdate(ctx context.Context, resourceKey, defaultValue string) error

	// Delete removes the resource. Deleting an absent resource is not an error.
	Delete(ctx context.Context, resourceKey string) error
}

// RoutingHelper builds admin route paths for configuration screens.
type RoutingHelper interface {
	// BuildActionURL returns the path for an action on a controller with the
	// given route values.
	BuildActionURL(action, controller string, routeValues map[string]string) string
}
