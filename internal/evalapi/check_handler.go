package evalapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/observability"
	"github.com/mpontes/promogate/internal/ruleengine"
)

// handleCheck decides whether a customer's cart satisfies one discount
// requirement.
//
// It returns:
//   - 200 with the decision (is_valid, reason) on success;
//   - 400 if the payload is malformed or the requirement id is missing;
//   - 500 if the configuration cannot be loaded. Callers treat non-200 as
//     "discount not eligible", so infrastructure failures fail closed.
func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// 1. Decode (Fail Fast)
	var req CheckRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("bad request: invalid json", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	if req.DiscountRequirementID <= 0 {
		log.Warn("bad request: missing discount_requirement_id")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "discount_requirement_id is required",
		})
		return
	}

	// Trace the check attempt (Debug level for high-throughput)
	log.Debug("checking requirement",
		slog.Int64("requirement_id", req.DiscountRequirementID),
		slog.Int64("store_id", req.StoreID),
	)

	// 2. Map to the rule's request type
	checkReq := &hasoneproduct.ValidationRequest{
		DiscountRequirementID: req.DiscountRequirementID,
		StoreID:               req.StoreID,
	}
	if req.Customer != nil {
		checkReq.Customer = &hasoneproduct.Customer{
			ID:        req.Customer.ID,
			CartItems: append([]ruleengine.CartItem(nil), req.Customer.CartItems...),
		}
	}

	// 3. Evaluate
	result, err := a.rule.CheckRequirement(r.Context(), checkReq)
	if err != nil {
		log.Error("requirement check failed",
			slog.Int64("requirement_id", req.DiscountRequirementID),
			slog.String("error", err.Error()),
		)
		// We return 500 here to be safe and avoid exposing internal errors to clients.
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to check discount requirement",
		})
		return
	}

	observability.EvalPlaneDecisions.
		WithLabelValues(strconv.FormatBool(result.IsValid), result.Reason).
		Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, CheckResponse{
		IsValid: result.IsValid,
		Reason:  result.Reason,
	})
}
