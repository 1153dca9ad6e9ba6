package handlers

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/middleware"
	"github.com/verdantia/carbontrace/app/services"
	businessflow "github.com/verdantia/carbontrace/business_flow"
)

// DataEntryHandlerInterface defines the contract for data entry handlers
type DataEntryHandlerInterface interface {
	Create(c fiber.Ctx) error
	ProcessDocument(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Verify(c fiber.Ctx) error
	Reject(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// DataEntryHandler handles data-entry-related HTTP requests
type DataEntryHandler struct {
	entryFlow businessflow.DataEntryFlow
	validator *validator.Validate
}

func (h *DataEntryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DataEntryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewDataEntryHandler creates a new data entry handler
func NewDataEntryHandler(entryFlow businessflow.DataEntryFlow) *DataEntryHandler {
	return &DataEntryHandler{
		entryFlow: entryFlow,
		validator: validator.New(),
	}
}

// accessErrorResponse maps the shared membership/role errors to HTTP responses
func (h *DataEntryHandler) accessErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsUserNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
	case businessflow.IsAccountInactive(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
	case businessflow.IsNoOrganization(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "User does not belong to an organization", "NO_ORGANIZATION", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "FORBIDDEN", nil)
	}
	return nil
}

// Create handles manual data entry creation
// @Summary Create Data Entry
// @Description Create a manual consumption entry. The CO2e pair is derived from the current emission factor; a resolver miss leaves it null.
// @Tags DataEntries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDataEntryRequest true "Entry data"
// @Success 201 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Category or facility not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries [post]
func (h *DataEntryHandler) Create(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateDataEntryRequest
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

	result, err := h.entryFlow.CreateEntry(h.createRequestContext(c, "/api/v1/data-entries"), userID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsCategoryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Emission category not found", "CATEGORY_NOT_FOUND", nil)
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidQuantity(err) || businessflow.IsInvalidEntryDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry data", "INVALID_ENTRY_DATA", nil)
		}

		log.Println("Data entry creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry creation failed", "ENTRY_CREATION_FAILED", nil)
	}

	if result.CO2eKg != nil {
		middleware.RecordEmissionResolution("hit")
	} else {
		middleware.RecordEmissionResolution("miss")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Data entry created successfully", result)
}

// ProcessDocument handles supplier document ingestion
// @Summary Process Document
// @Description Upload a supplier document, extract its fields, and create an entry. High extraction confidence yields a pending entry, anything lower yields action_required.
// @Tags DataEntries
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file (pdf, jpeg, png, webp)"
// @Param category formData string true "Category hint, e.g. electricity"
// @Param facility_id formData int false "Facility ID"
// @Success 201 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry created from document"
// @Failure 400 {object} dto.APIResponse "Missing file or no category match"
// @Failure 415 {object} dto.APIResponse "Unsupported file type"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/process-document [post]
func (h *DataEntryHandler) ProcessDocument(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Document file is required", "DOCUMENT_REQUIRED", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid document file", "DOCUMENT_UNREADABLE", err.Error())
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid document file", "DOCUMENT_UNREADABLE", err.Error())
	}

	req := dto.ProcessDocumentRequest{
		Category: c.FormValue("category"),
	}
	if raw := c.FormValue("facility_id"); raw != "" {
		facilityID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || facilityID == 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid facility ID", "INVALID_FACILITY_ID", nil)
		}
		id := uint(facilityID)
		req.FacilityID = &id
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.entryFlow.ProcessDocument(h.createRequestContext(c, "/api/v1/data-entries/process-document"), userID, fileHeader.Filename, document, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsNoCategoryMatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No emission category matches the document", "NO_CATEGORY_MATCH", nil)
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}
		if businessflow.IsDocumentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Document file is required", "DOCUMENT_REQUIRED", nil)
		}
		if services.IsUnsupportedFileType(err) {
			return h.ErrorResponse(c, fiber.StatusUnsupportedMediaType, "Unsupported file type", "UNSUPPORTED_FILE_TYPE", nil)
		}

		log.Println("Document processing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Document processing failed", "DOCUMENT_PROCESSING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Document processed successfully", result)
}

// List lists entries with filters and pagination
// @Summary List Data Entries
// @Description List the organization's entries, filtered by facility, category, date range, and status
// @Tags DataEntries
// @Produce json
// @Security BearerAuth
// @Param facility_id query int false "Facility ID"
// @Param category_id query int false "Category ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Verification status"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListDataEntriesResponse} "Entries listing"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries [get]
func (h *DataEntryHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListDataEntriesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.entryFlow.ListEntries(h.createRequestContext(c, "/api/v1/data-entries"), userID, &req)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsInvalidPageSize(err) || businessflow.IsStartDateAfterEndDate(err) || businessflow.IsInvalidEntryDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing filter", "INVALID_FILTER", nil)
		}

		log.Println("Data entry listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry listing failed", "ENTRY_LISTING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entries retrieved successfully", result)
}

// Get returns one entry
// @Summary Get Data Entry
// @Description Get one of the organization's entries
// @Tags DataEntries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/{id} [get]
func (h *DataEntryHandler) Get(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry ID", "INVALID_ENTRY_ID", nil)
	}

	result, err := h.entryFlow.GetEntry(h.createRequestContext(c, "/api/v1/data-entries/:id"), userID, entryID)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsEntryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Data entry not found", "ENTRY_NOT_FOUND", nil)
		}

		log.Println("Data entry lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry lookup failed", "ENTRY_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entry retrieved successfully", result)
}

// Update handles a partial entry update
// @Summary Update Data Entry
// @Description Partially update an entry. Quantity, unit, or category changes recompute the CO2e pair.
// @Tags DataEntries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body dto.UpdateDataEntryRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry updated"
// @Failure 400 {object} dto.APIResponse "Validation error or empty update"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/{id} [patch]
func (h *DataEntryHandler) Update(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry ID", "INVALID_ENTRY_ID", nil)
	}

	var req dto.UpdateDataEntryRequest
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

	result, err := h.entryFlow.UpdateEntry(h.createRequestContext(c, "/api/v1/data-entries/:id"), userID, entryID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsEmptyUpdate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "EMPTY_UPDATE", nil)
		}
		if businessflow.IsEntryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Data entry not found", "ENTRY_NOT_FOUND", nil)
		}
		if businessflow.IsCategoryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Emission category not found", "CATEGORY_NOT_FOUND", nil)
		}
		if businessflow.IsFacilityNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Facility not found", "FACILITY_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidQuantity(err) || businessflow.IsInvalidEntryDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry data", "INVALID_ENTRY_DATA", nil)
		}

		log.Println("Data entry update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry update failed", "ENTRY_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entry updated successfully", result)
}

// Verify marks an entry verified
// @Summary Verify Data Entry
// @Description Mark an entry verified, stamping the reviewer and time
// @Tags DataEntries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry verified"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/{id}/verify [post]
func (h *DataEntryHandler) Verify(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry ID", "INVALID_ENTRY_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.entryFlow.VerifyEntry(h.createRequestContext(c, "/api/v1/data-entries/:id/verify"), userID, entryID, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsEntryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Data entry not found", "ENTRY_NOT_FOUND", nil)
		}

		log.Println("Data entry verification failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry verification failed", "ENTRY_VERIFY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entry verified successfully", result)
}

// Reject marks an entry action_required
// @Summary Reject Data Entry
// @Description Mark an entry action_required, optionally overwriting the notes
// @Tags DataEntries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body dto.RejectDataEntryRequest false "Optional reviewer notes"
// @Success 200 {object} dto.APIResponse{data=dto.DataEntryDTO} "Entry rejected"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/{id}/reject [post]
func (h *DataEntryHandler) Reject(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry ID", "INVALID_ENTRY_ID", nil)
	}

	var req dto.RejectDataEntryRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.entryFlow.RejectEntry(h.createRequestContext(c, "/api/v1/data-entries/:id/reject"), userID, entryID, &req, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsEntryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Data entry not found", "ENTRY_NOT_FOUND", nil)
		}

		log.Println("Data entry rejection failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry rejection failed", "ENTRY_REJECT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entry rejected successfully", result)
}

// Delete removes an entry and its attached document
// @Summary Delete Data Entry
// @Description Delete an entry; the attached document is removed best-effort
// @Tags DataEntries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} dto.APIResponse "Entry deleted"
// @Failure 404 {object} dto.APIResponse "Entry not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/{id} [delete]
func (h *DataEntryHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid entry ID", "INVALID_ENTRY_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	err := h.entryFlow.DeleteEntry(h.createRequestContext(c, "/api/v1/data-entries/:id"), userID, entryID, metadata)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsEntryNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Data entry not found", "ENTRY_NOT_FOUND", nil)
		}

		log.Println("Data entry deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry deletion failed", "ENTRY_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Entry deleted successfully", nil)
}

// Stats returns yearly aggregates
// @Summary Data Entry Stats
// @Description Yearly totals: entry count, total CO2e, facilities with data, verified and action_required counts
// @Tags DataEntries
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (default: current)"
// @Success 200 {object} dto.APIResponse{data=dto.DataEntryStatsResponse} "Yearly stats"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/stats [get]
func (h *DataEntryHandler) Stats(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.DataEntryStatsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.entryFlow.Stats(h.createRequestContext(c, "/api/v1/data-entries/stats"), userID, req.Year)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}

		log.Println("Data entry stats failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to aggregate data entries", "ENTRY_STATS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stats retrieved successfully", result)
}

// Export downloads the filtered listing as an xlsx workbook
// @Summary Export Data Entries
// @Description Download the filtered listing as an xlsx workbook
// @Tags DataEntries
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param facility_id query int false "Facility ID"
// @Param category_id query int false "Category ID"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param status query string false "Verification status"
// @Success 200 {string} string "xlsx file"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/data-entries/export [get]
func (h *DataEntryHandler) Export(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListDataEntriesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	filename, data, err := h.entryFlow.ExportXLSX(h.createRequestContext(c, "/api/v1/data-entries/export"), userID, &req)
	if err != nil {
		if resp := h.accessErrorResponse(c, err); resp != nil {
			return resp
		}
		if businessflow.IsStartDateAfterEndDate(err) || businessflow.IsInvalidEntryDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing filter", "INVALID_FILTER", nil)
		}

		log.Println("Data entry export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Data entry export failed", "ENTRY_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *DataEntryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}
