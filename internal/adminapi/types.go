package adminapi

import (
	"strings"
	"time"

	"github.com/mpontes/promogate/internal/ruleengine"
)

// Requirement represents the discount requirement resource as exposed by the
// API. It joins the discount_requirements row with its configuration string
// from the settings store.
type Requirement struct {
	// ID is the internal surrogate key. Read-only.
	ID int64 `json:"id"`

	// DiscountID is the discount this requirement restricts.
	DiscountID int64 `json:"discount_id"`

	// RuleSystemName identifies the rule plugin evaluating this requirement.
	RuleSystemName string `json:"rule_system_name"`

	// Configuration is the restricted-product constraint string,
	// e.g. "77, 123:2, 156:3-8".
	Configuration string `json:"configuration"`

	// CreatedAt is the timestamp of creation in UTC.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last update in UTC.
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequirementRequest defines the payload for creating a new requirement.
// Used for JSON decoding in the POST /requirements endpoint.
type CreateRequirementRequest struct {
	// DiscountID is required.
	DiscountID int64 `json:"discount_id"`

	// Configuration is optional. An empty configuration means the requirement
	// imposes no product restriction yet.
	Configuration string `json:"configuration,omitempty"`
}

// Sanitize cleans up input data by trimming whitespace.
// This prevents "dirty" data from entering the system logic.
func (r *CreateRequirementRequest) Sanitize() {
	r.Configuration = strings.TrimSpace(r.Configuration)
}

// Validate checks if the request data adheres to business rules.
// It returns a structured *ErrorResponse if validation fails, or nil if valid.
//
// The write side is strict: a configuration that the evaluator would merely
// skip or abort on is rejected here, so malformed constraint strings never
// reach the store through this API.
func (r *CreateRequirementRequest) Validate() *ErrorResponse {
	if r.DiscountID <= 0 {
		return &ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "discount_id must be a positive integer",
		}
	}

	return validateConfiguration(r.Configuration)
}

// UpdateRequirementRequest defines the payload for partial updates (PATCH).
// The pointer distinguishes "missing field" (do nothing) from an explicit
// update to the empty string (clear the restriction).
type UpdateRequirementRequest struct {
	Configuration *string `json:"configuration,omitempty"`
}

// Validate checks if the provided fields adhere to business rules.
func (r *UpdateRequirementRequest) Validate() *ErrorResponse {
	if r.Configuration != nil {
		return validateConfiguration(*r.Configuration)
	}
	return nil
}

// validateConfiguration runs the strict constraint parser over every token.
func validateConfiguration(configuration string) *ErrorResponse {
	if err := ruleengine.ValidateConfiguration(configuration); err != nil {
		return &ErrorResponse{
			Code:    "ERR_INVALID_CONFIGURATION",
			Message: "Invalid constraint string: " + err.Error(),
		}
	}
	return nil
}

// ConfigureURLResponse carries the admin route to a rule's configuration screen.
type ConfigureURLResponse struct {
	URL string `json:"url"`
}

// PaginatedResponse is a standard wrapper for list endpoints to support offset pagination.
type PaginatedResponse struct {
	// Data holds the list of resources (e.g., []Requirement).
	Data interface{} `json:"data"`

	// Pagination contains pagination metadata.
	Pagination Pagination `json:"pagination"`
}

// Pagination metadata for the frontend pager.
type Pagination struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// ErrorResponse represents a standard structured API error.
type ErrorResponse struct {
	// Code is a machine-readable error code (e.g., "ERR_INVALID_INPUT").
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details provides optional granular validation errors.
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail provides context about specific field validation failures.
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}
