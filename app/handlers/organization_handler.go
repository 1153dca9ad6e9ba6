package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/middleware"
	businessflow "github.com/verdantia/carbontrace/business_flow"
)

// OrganizationHandlerInterface defines the contract for organization handlers
type OrganizationHandlerInterface interface {
	Create(c fiber.Ctx) error
	GetMine(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	ListUsers(c fiber.Ctx) error
	UpdateUserRole(c fiber.Ctx) error
	RemoveUser(c fiber.Ctx) error
	InviteUser(c fiber.Ctx) error
}

// OrganizationHandler handles organization-related HTTP requests
type OrganizationHandler struct {
	orgFlow   businessflow.OrganizationFlow
	validator *validator.Validate
}

func (h *OrganizationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *OrganizationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgFlow businessflow.OrganizationFlow) *OrganizationHandler {
	return &OrganizationHandler{
		orgFlow:   orgFlow,
		validator: validator.New(),
	}
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// accessErrorResponse maps the shared membership/role errors to HTTP responses
func (h *OrganizationHandler) accessErrorResponse(c fiber.Ctx, err error) error {
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

// Create handles organization creation
// @Summary Create Organization
// @Description Create an organization and promote the creator to admin
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrganizationRequest true "Organization data"
// @Success 201 {object} dto.APIResponse{data=dto.CreateOrganizationResponse} "Organization created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Already in an organization or fiscal ID taken"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations [post]
func (h *OrganizationHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateOrganizationRequest
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

	result, err := h.orgFlow.CreateOrganization(h.createRequestContext(c, "/api/v1/organizations"), userID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsAlreadyInOrganization(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "User already belongs to an organization", "ALREADY_IN_ORGANIZATION", nil)
		}
		if businessflow.IsFiscalIDTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Fiscal ID is already registered", "FISCAL_ID_TAKEN", nil)
		}

		log.Println("Organization creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Organization creation failed", "ORGANIZATION_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// GetMine returns the caller's organization with counts
// @Summary My Organization
// @Description Get the caller's organization with member and facility counts
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationOverviewResponse} "Organization overview"
// @Failure 403 {object} dto.APIResponse "No organization"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/me [get]
func (h *OrganizationHandler) GetMine(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.orgFlow.GetMyOrganization(h.createRequestContext(c, "/api/v1/organizations/me"), userID)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}

		log.Println("Organization lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Organization lookup failed", "ORGANIZATION_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Organization retrieved successfully", result)
}

// Update handles a partial organization update
// @Summary Update Organization
// @Description Partially update the organization (admin only)
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param request body dto.UpdateOrganizationRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationDTO} "Organization updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/{id} [patch]
func (h *OrganizationHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization ID", "INVALID_ORGANIZATION_ID", nil)
	}

	var req dto.UpdateOrganizationRequest
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

	result, err := h.orgFlow.UpdateOrganization(h.createRequestContext(c, "/api/v1/organizations/:id"), userID, orgID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}

		log.Println("Organization update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Organization update failed", "ORGANIZATION_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Organization updated successfully", result)
}

// ListUsers lists the organization's members
// @Summary List Organization Users
// @Description List members of the organization
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListOrganizationUsersResponse} "Members listing"
// @Failure 403 {object} dto.APIResponse "Access denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/{id}/users [get]
func (h *OrganizationHandler) ListUsers(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization ID", "INVALID_ORGANIZATION_ID", nil)
	}

	result, err := h.orgFlow.ListUsers(h.createRequestContext(c, "/api/v1/organizations/:id/users"), userID, orgID)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}

		log.Println("Organization users listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list organization users", "USER_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved successfully", result)
}

// UpdateUserRole changes a member's role
// @Summary Update Member Role
// @Description Change a member's role (admin only; cannot change own role)
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param userId path int true "Target user ID"
// @Param request body dto.UpdateUserRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=dto.UserDTO} "Role updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Insufficient role or own role change"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/{id}/users/{userId}/role [patch]
func (h *OrganizationHandler) UpdateUserRole(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization ID", "INVALID_ORGANIZATION_ID", nil)
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", "INVALID_USER_ID", nil)
	}

	var req dto.UpdateUserRoleRequest
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

	result, err := h.orgFlow.UpdateUserRole(h.createRequestContext(c, "/api/v1/organizations/:id/users/:userId/role"), userID, orgID, targetUserID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsCannotChangeOwnRole(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Cannot change own role", "CANNOT_CHANGE_OWN_ROLE", nil)
		}

		log.Println("Role update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Role update failed", "ROLE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Role updated successfully", result)
}

// RemoveUser detaches a member from the organization
// @Summary Remove Member
// @Description Remove a member from the organization (admin only; cannot remove self)
// @Tags Organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param userId path int true "Target user ID"
// @Success 200 {object} dto.APIResponse "Member removed"
// @Failure 403 {object} dto.APIResponse "Insufficient role or self removal"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/{id}/users/{userId} [delete]
func (h *OrganizationHandler) RemoveUser(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization ID", "INVALID_ORGANIZATION_ID", nil)
	}
	targetUserID, ok := parseIDParam(c, "userId")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", "INVALID_USER_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err := h.orgFlow.RemoveUser(h.createRequestContext(c, "/api/v1/organizations/:id/users/:userId"), userID, orgID, targetUserID, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsCannotRemoveSelf(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Cannot remove self from organization", "CANNOT_REMOVE_SELF", nil)
		}

		log.Println("Member removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Member removal failed", "MEMBER_REMOVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member removed successfully", nil)
}

// InviteUser attaches an existing user to the organization by email
// @Summary Invite User
// @Description Attach an existing account to the organization, or acknowledge a pending invite
// @Tags Organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param request body dto.InviteUserRequest true "Invitation data"
// @Success 200 {object} dto.APIResponse{data=dto.InviteUserResponse} "Invitation processed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Insufficient role"
// @Failure 409 {object} dto.APIResponse "Invitee already attached"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/organizations/{id}/invitations [post]
func (h *OrganizationHandler) InviteUser(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	orgID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid organization ID", "INVALID_ORGANIZATION_ID", nil)
	}

	var req dto.InviteUserRequest
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

	result, err := h.orgFlow.InviteUser(h.createRequestContext(c, "/api/v1/organizations/:id/invitations"), userID, orgID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsInviteeAlreadyAttached(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Invited user already belongs to an organization", "INVITEE_ALREADY_ATTACHED", nil)
		}

		log.Println("Invitation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Invitation failed", "INVITATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *OrganizationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
