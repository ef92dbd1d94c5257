package hasoneproduct

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mpontes/promogate/internal/ruleengine"
)

// SystemName identifies this rule on discount requirement records.
const SystemName = "DiscountRequirement.HasOneProduct"

// settingKeyFormat is the settings key pattern, keyed by requirement id.
const settingKeyFormat = "DiscountRequirement.HasOneProduct-%d"

// ErrNilRequest reports a missing validation request. Unlike a failed
// validation, this is a caller contract violation and surfaces as an error.
var ErrNilRequest = errors.New("hasoneproduct: validation request cannot be nil")

// SettingKey returns the settings key holding the restricted-product
// configuration string for one discount requirement.
func SettingKey(requirementID int64) string {
	return fmt.Sprintf(settingKeyFormat, requirementID)
}

// Customer carries the cart of the customer being checked. A nil Customer on
// the request means "no customer", which fails any configured requirement.
type Customer struct {
	ID        int64
	CartItems []ruleengine.CartItem
}

// ValidationRequest is the input to CheckRequirement.
type ValidationRequest struct {
	// DiscountRequirementID keys the stored configuration string.
	DiscountRequirementID int64

	// Customer is optional; absence fails closed whenever a configuration exists.
	Customer *Customer

	// StoreID scopes cart-line aggregation to one store.
	StoreID int64
}

// ValidationResult is the outcome of a requirement check.
type ValidationResult struct {
	// IsValid reports whether the requirement passed. Defaults to false.
	IsValid bool

	// Reason explains the outcome (see ruleengine reason constants plus
	// ReasonNoConfiguration and ReasonNoCustomer).
	Reason string
}

// Rule-level outcome reasons, complementing the engine's.
const (
	// ReasonNoConfiguration means no restriction is configured, so the
	// requirement is vacuously satisfied.
	ReasonNoConfiguration = "NO_CONFIGURATION"

	// ReasonNoCustomer means a restriction exists but no customer was given.
	ReasonNoCustomer = "NO_CUSTOMER"
)

// Rule is the "has one product" discount requirement rule plugin.
// All collaborators are constructor-injected; the rule itself is stateless
// per call and safe for concurrent use.
type Rule struct {
	logger       *slog.Logger
	engine       *ruleengine.Engine
	settings     SettingsStore
	requirements DiscountRequirementStore
	localization LocalizationResourceStore
	routing      RoutingHelper
}

// New creates the rule with its collaborators.
// Panics on nil dependencies (programmer error, fail fast).
func New(
	logger *slog.Logger,
	settings SettingsStore,
	requirements DiscountRequirementStore,
	localization LocalizationResourceStore,
	routing RoutingHelper,
) *Rule {
	if logger == nil {
		logger = slog.Default()
	}
	if settings == nil {
		panic("hasoneproduct: settings store cannot be nil")
	}
	if requirements == nil {
		panic("hasoneproduct: discount requirement store cannot be nil")
	}
	if localization == nil {
		panic("hasoneproduct: localization resource store cannot be nil")
	}
	if routing == nil {
		panic("hasoneproduct: routing helper cannot be nil")
	}

	return &Rule{
		logger:       logger,
		engine:       ruleengine.New(logger),
		settings:     settings,
		requirements: requirements,
		localization: localization,
		routing:      routing,
	}
}

// CheckRequirement decides whether the customer's cart satisfies the
// restricted-product requirement.
//
// The decision ladder, in order:
//  1. nil request -> ErrNilRequest (hard failure, not a validation result);
//  2. no configuration stored -> valid (no restriction defined);
//  3. no customer -> invalid;
//  4. otherwise the engine evaluates the configuration against the cart,
//     aggregated per product within the request's store and shopping-cart
//     type only.
//
// Settings store failures are returned to the caller together with a
// fail-closed result.
func (r *Rule) CheckRequirement(ctx context.Context, req *ValidationRequest) (ValidationResult, error) {
	if req == nil {
		return ValidationResult{}, ErrNilRequest
	}

	key := SettingKey(req.DiscountRequirementID)

	configuration, _, err := r.settings.GetByKey(ctx, key)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("failed to load configuration for %q: %w", key, err)
	}

	if strings.TrimSpace(configuration) == "" {
		// No restriction configured: the requirement is vacuously satisfied.
		return ValidationResult{IsValid: true, Reason: ReasonNoConfiguration}, nil
	}

	if req.Customer == nil {
		return ValidationResult{IsValid: false, Reason: ReasonNoCustomer}, nil
	}

	lines := ruleengine.AggregateCart(req.Customer.CartItems, req.StoreID)
	outcome := r.engine.Evaluate(configuration, lines)

	r.logger.Debug("requirement checked",
		slog.Int64("requirement_id", req.DiscountRequirementID),
		slog.Int64("store_id", req.StoreID),
		slog.Bool("is_valid", outcome.Valid),
		slog.String("reason", outcome.Reason),
	)

	return ValidationResult{IsValid: outcome.Valid, Reason: outcome.Reason}, nil
}

// GetConfigurationURL builds the admin route path to this rule's
// configuration screen for the given discount. When requirementID is
// non-zero an existing requirement is being edited and its id is included.
// A single leading path separator is stripped, matching the embedding
// contract of the admin shell.
func (r *Rule) GetConfigurationURL(discountID, requirementID int64) string {
	routeValues := map[string]string{
		"discountId": strconv.FormatInt(discountID, 10),
	}
	if requirementID != 0 {
		routeValues["discountRequirementId"] = strconv.FormatInt(requirementID, 10)
	}

	url := r.routing.BuildActionURL("Configure", "DiscountRulesHasOneProduct", routeValues)
	return strings.TrimPrefix(url, "/")
}
