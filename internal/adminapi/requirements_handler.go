package adminapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mpontes/promogate/internal/hasoneproduct"
	"github.com/mpontes/promogate/internal/logger"
	"github.com/mpontes/promogate/internal/store"
)

// handleCreateRequirement processes the POST /api/v1/requirements request.
//
// Responsibilities:
// 1. Decodes the JSON payload into the CreateRequirementRequest DTO.
// 2. Sanitizes and Validates the input using the DTO's business logic.
// 3. Persists the requirement record and its configuration setting.
// 4. Pushes the configuration to the L2 cache (best effort, async).
// 5. Returns the created resource with a 201 Created status.
func (a *API) handleCreateRequirement(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// 1. Decode Request
	var req CreateRequirementRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("invalid json payload", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	// 2. Sanitize & Validate
	// We delegate this logic to the DTO to keep the handler clean and testable.
	req.Sanitize()

	if errResp := req.Validate(); errResp != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResp)
		return
	}

	// 3. Persist the requirement record
	rec, err := a.requirements.Create(r.Context(), req.DiscountID, hasoneproduct.SystemName)
	if err != nil {
		log.Error("failed to create requirement in db", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to create discount requirement",
		})
		return
	}

	// 4. Persist the configuration string under the requirement's setting key.
	// The record id is only known after insert, hence the two-step write.
	settingName := hasoneproduct.SettingKey(rec.ID)
	if err := a.settings.Set(r.Context(), settingName, req.Configuration); err != nil {
		log.Error("failed to store requirement configuration", "error", err, slog.Int64("requirement_id", rec.ID))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to store requirement configuration",
		})
		return
	}

	// 5. Async cache write-through
	a.propagateAsync(log, settingName, &req.Configuration)

	// 6. Return Success
	log.Info("requirement created successfully",
		slog.Int64("requirement_id", rec.ID),
		slog.Int64("discount_id", rec.DiscountID),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, mapRecordToResponse(rec, req.Configuration))
}

// handleListRequirements processes the GET /api/v1/requirements request.
//
// Responsibilities:
// 1. Parses and sanitizes pagination parameters (page, page_size).
// 2. Calls the Repository to fetch data and total count.
// 3. Joins each record with its configuration string.
// 4. Returns the PaginatedResponse.
func (a *API) handleListRequirements(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// 1. Parse Query Parameters (Type Validation)
	// We return 400 Bad Request if the user sends invalid types (e.g., page=banana).
	page, err := parseOptionalInt(r, "page", 1)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: err.Error(),
		})
		return
	}

	pageSize, err := parseOptionalInt(r, "page_size", 10)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: err.Error(),
		})
		return
	}

	// 2. Sanitize & Clamp (Logic Validation)
	// We silently correct out-of-bounds values to ensure system stability and UX.
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100 // Hard limit to prevent large queries
	}

	offset := (page - 1) * pageSize

	// 3. Call Repository
	records, err := a.requirements.List(r.Context(), pageSize, offset)
	if err != nil {
		log.Error("failed to list requirements from db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to list discount requirements",
		})
		return
	}

	totalItems, err := a.requirements.Count(r.Context())
	if err != nil {
		log.Error("failed to count requirements", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to count discount requirements",
		})
		return
	}

	// 4. Join each record with its configuration string.
	dtos := make([]Requirement, len(records))
	for i, rec := range records {
		configuration, _, err := a.settings.GetByKey(r.Context(), hasoneproduct.SettingKey(rec.ID))
		if err != nil {
			log.Error("failed to load requirement configuration",
				slog.Int64("requirement_id", rec.ID),
				slog.String("error", err.Error()),
			)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_INTERNAL",
				Message: "Failed to load requirement configuration",
			})
			return
		}
		dtos[i] = mapRecordToResponse(rec, configuration)
	}

	// 5. Calculate Metadata
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(pageSize)))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, PaginatedResponse{
		Data: dtos,
		Pagination: Pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
	})
}

// handleGetRequirement processes the GET /api/v1/requirements/{id} request.
func (a *API) handleGetRequirement(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	rec, err := a.requirements.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRequirementNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Discount requirement not found",
			})
			return
		}
		log.Error("failed to get requirement from db", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to get discount requirement",
		})
		return
	}

	configuration, _, err := a.settings.GetByKey(r.Context(), hasoneproduct.SettingKey(rec.ID))
	if err != nil {
		log.Error("failed to load requirement configuration", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to load requirement configuration",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, mapRecordToResponse(rec, configuration))
}

// handleUpdateRequirement processes the PATCH /api/v1/requirements/{id} request.
// Only the configuration string is mutable; discount binding and rule name are
// fixed at creation.
func (a *API) handleUpdateRequirement(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateRequirementRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("invalid json payload", slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_JSON",
			Message: "Invalid JSON payload: " + err.Error(),
		})
		return
	}

	if errResp := req.Validate(); errResp != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResp)
		return
	}

	// Nothing to change: return the current resource.
	if req.Configuration == nil {
		a.handleGetRequirement(w, r)
		return
	}

	settingName := hasoneproduct.SettingKey(id)

	if err := a.settings.Set(r.Context(), settingName, *req.Configuration); err != nil {
		log.Error("failed to update requirement configuration", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to update requirement configuration",
		})
		return
	}

	rec, err := a.requirements.Touch(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRequirementNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Discount requirement not found",
			})
			return
		}
		log.Error("failed to touch requirement", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to update discount requirement",
		})
		return
	}

	a.propagateAsync(log, settingName, req.Configuration)

	log.Info("requirement updated successfully", slog.Int64("requirement_id", id))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, mapRecordToResponse(rec, *req.Configuration))
}

// handleDeleteRequirement processes the DELETE /api/v1/requirements/{id} request.
// It removes the record, its configuration setting, and the cached copy.
func (a *API) handleDeleteRequirement(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	err := a.requirements.Delete(r.Context(), hasoneproduct.DiscountRequirement{ID: id})
	if err != nil {
		if errors.Is(err, store.ErrRequirementNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, ErrorResponse{
				Code:    "ERR_NOT_FOUND",
				Message: "Discount requirement not found",
			})
			return
		}
		log.Error("failed to delete requirement", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INTERNAL",
			Message: "Failed to delete discount requirement",
		})
		return
	}

	settingName := hasoneproduct.SettingKey(id)
	if err := a.settings.Delete(r.Context(), settingName); err != nil {
		// The record is gone; an orphaned setting is cleaned up on the next
		// write. Log and continue.
		log.Warn("failed to delete requirement configuration",
			slog.Int64("requirement_id", id),
			slog.String("error", err.Error()),
		)
	}

	a.propagateAsync(log, settingName, nil)

	log.Info("requirement deleted successfully", slog.Int64("requirement_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleConfigureURL processes the GET /api/v1/requirements/configure-url request.
// Query parameters: discount_id (required), requirement_id (optional, present
// when editing an existing requirement).
func (a *API) handleConfigureURL(w http.ResponseWriter, r *http.Request) {
	discountID, err := parseOptionalInt64(r, "discount_id", 0)
	if err != nil || discountID <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: "parameter 'discount_id' must be a positive integer",
		})
		return
	}

	requirementID, err := parseOptionalInt64(r, "requirement_id", 0)
	if err != nil || requirementID < 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_QUERY_PARAM",
			Message: "parameter 'requirement_id' must be a non-negative integer",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ConfigureURLResponse{
		URL: a.rule.GetConfigurationURL(discountID, requirementID),
	})
}

// --- Private Helpers ---

// parseIDParam extracts and validates the {id} path parameter.
// On failure it writes the 400 response and returns ok=false.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{
			Code:    "ERR_INVALID_INPUT",
			Message: "Requirement id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// parseOptionalInt extracts an integer from the query string.
// If the parameter is missing, it returns the defaultValue.
// It only returns an error if the parameter is present but malformed.
func parseOptionalInt(r *http.Request, key string, defaultValue int) (int, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", key)
	}
	return val, nil
}

// parseOptionalInt64 is parseOptionalInt for 64-bit identifiers.
func parseOptionalInt64(r *http.Request, key string, defaultValue int64) (int64, error) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue, nil
	}
	val, err := strconv.ParseInt(valStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter '%s' must be an integer", key)
	}
	return val, nil
}

// mapRecordToResponse joins a store record and its configuration into the API DTO.
func mapRecordToResponse(rec store.RequirementRecord, configuration string) Requirement {
	return Requirement{
		ID:             rec.ID,
		DiscountID:     rec.DiscountID,
		RuleSystemName: rec.RuleSystemName,
		Configuration:  configuration,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

// propagateAsync pushes a configuration change to the L2 cache without
// blocking the HTTP response. A nil value deletes the cached entry.
// Failures are retried with backoff; the syncer repairs any loss on its next
// cycle, so this is best effort.
func (a *API) propagateAsync(log *slog.Logger, settingName string, value *string) {
	go func() {
		// Create a context disconnected from the HTTP request.
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		const maxRetries = 3
		baseDelay := 100 * time.Millisecond

		for i := 0; i <= maxRetries; i++ {
			var err error
			if value == nil {
				err = a.cache.DeleteSetting(ctx, settingName)
			} else {
				err = a.cache.SetSetting(ctx, settingName, *value)
			}
			if err == nil {
				return
			}

			if i == maxRetries {
				log.Error("failed to propagate setting to cache after retries",
					slog.String("setting", settingName),
					slog.String("error", err.Error()))
				return
			}

			// Simple exponential backoff
			log.Warn("failed to propagate setting, retrying...",
				slog.String("setting", settingName),
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))

			time.Sleep(baseDelay * time.Duration(1<<i))
		}
	}()
}
