package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/middleware"
	businessflow "github.com/verdantia/carbontrace/business_flow"
)

// FacilityHandlerInterface defines the contract for facility handlers
type FacilityHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Geocode(c fiber.Ctx) error
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	facilityFlow businessflow.FacilityFlow
	validator    *validator.Validate
}

func (h *FacilityHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *FacilityHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilityFlow businessflow.FacilityFlow) *FacilityHandler {
	return &FacilityHandler{
		facilityFlow: facilityFlow,
		validator:    validator.New(),
	}
}

// accessErrorResponse maps the shared membership/role errors to HTTP responses
func (h *FacilityHandler) accessErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsUserNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
	case businessflow.IsAccountInactive(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	case businessflow.IsNoOrganization(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "User does not belong to an organization", "NO_ORGANIZATION", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "FORBIDDEN", nil)
	case businessflow.IsInsufficientRole(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Insufficient role for this operation", "INSUFFICIENT_ROLE", nil)
	}
	return nil
}

// Create handles facility creation
// @Summary Create Facility
// @Description Create a facility (admin or manager). Grid region is auto-detected from coordinates when absent.
// @Tags Facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacilityRequest true "Facility data"
// @Success 201 {object} dto.APIResponse{data=dto.FacilityDTO} "Facility created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities [post]
func (h *FacilityHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateFacilityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.facilityFlow.CreateFacility(h.createRequestContext(c, "/api/v1/facilities"), userID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}

		log.Println("Facility creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Facility creation failed", "FACILITY_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Facility created successfully", result)
}

// List lists the organization's active facilities
// @Summary List Facilities
// @Description List the organization's active facilities
// @Tags Facilities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListFacilitiesResponse} "Facilities listing"
// @Failure 403 {object} dto.APIResponse "No organization"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities [get]
func (h *FacilityHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.facilityFlow.ListFacilities(h.createRequestContext(c, "/api/v1/facilities"), userID)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}

		log.Println("Facility listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Facility listing failed", "FACILITY_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Facilities retrieved successfully", result)
}

// Get returns one facility
// @Summary Get Facility
// @Description Get one of the organization's facilities
// @Tags Facilities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Facility ID"
// @Success 200 {object} dto.APIResponse{data=dto.FacilityDTO} "Facility"
// @Failure 404 {object} dto.APIResponse "Facility not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities/{id} [get]
func (h *FacilityHandler) Get(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	facilityID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid facility ID", "INVALID_FACILITY_ID", nil)
	}

	result, err := h.facilityFlow.GetFacility(h.createRequestContext(c, "/api/v1/facilities/:id"), userID, facilityID)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}

		log.Println("Facility lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Facility lookup failed", "FACILITY_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Facility retrieved successfully", result)
}

// Update handles a partial facility update
// @Summary Update Facility
// @Description Partially update a facility (admin or manager)
// @Tags Facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Facility ID"
// @Param request body dto.UpdateFacilityRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.FacilityDTO} "Facility updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 404 {object} dto.APIResponse "Facility not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities/{id} [patch]
func (h *FacilityHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	facilityID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid facility ID", "INVALID_FACILITY_ID", nil)
	}

	var req dto.UpdateFacilityRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.facilityFlow.UpdateFacility(h.createRequestContext(c, "/api/v1/facilities/:id"), userID, facilityID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}

		log.Println("Facility update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Facility update failed", "FACILITY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Facility updated successfully", result)
}

// Delete soft-deletes a facility
// @Summary Delete Facility
// @Description Deactivate a facility (admin or manager). Existing entries keep their reference.
// @Tags Facilities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Facility ID"
// @Success 200 {object} dto.APIResponse "Facility deleted"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 404 {object} dto.APIResponse "Facility not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities/{id} [delete]
func (h *FacilityHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	facilityID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid facility ID", "INVALID_FACILITY_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err := h.facilityFlow.DeleteFacility(h.createRequestContext(c, "/api/v1/facilities/:id"), userID, facilityID, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}

		log.Println("Facility deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Facility deletion failed", "FACILITY_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Facility deleted successfully", nil)
}

// Geocode resolves a city to coordinates and a grid region
// @Summary Geocode City
// @Description Resolve a known city to coordinates and an electricity grid region
// @Tags Facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GeocodeRequest true "City to resolve"
// @Success 200 {object} dto.APIResponse{data=dto.GeocodeResponse} "Geocode result"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "City not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/facilities/geocode [post]
func (h *FacilityHandler) Geocode(c fiber.Ctx) error {
	var req dto.GeocodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.facilityFlow.Geocode(h.createRequestContext(c, "/api/v1/facilities/geocode"), &req)
	if err != nil {
		if businessflow.IsCityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "City not found", "CITY_NOT_FOUND", nil)
		}

		log.Println("Geocode failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Geocode failed", "GEOCODE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "City resolved successfully", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *FacilityHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
