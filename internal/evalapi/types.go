package evalapi

import "github.com/mpontes/promogate/internal/ruleengine"

// CheckRequest is the payload of POST /v1/requirements/check.
type CheckRequest struct {
	// DiscountRequirementID keys the stored configuration string. Required.
	DiscountRequirementID int64 `json:"discount_requirement_id"`

	// StoreID scopes cart aggregation to one store.
	StoreID int64 `json:"store_id"`

	// Customer carries the cart being checked. Omitting it means "no
	// customer", which fails any configured requirement.
	Customer *CustomerPayload `json:"customer,omitempty"`
}

// CustomerPayload mirrors the checkout backend's view of the customer.
type CustomerPayload struct {
	ID        int64                 `json:"id"`
	CartItems []ruleengine.CartItem `json:"cart_items"`
}

// CheckResponse is the eligibility decision.
type CheckResponse struct {
	// IsValid reports whether the discount requirement is satisfied.
	IsValid bool `json:"is_valid"`

	// Reason is a machine-readable explanation of the decision
	// (RULE_MATCH, NO_MATCH, PARSE_ABORT, NO_CONFIGURATION, NO_CUSTOMER).
	Reason string `json:"reason"`
}

// ErrorResponse represents a standard structured API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
