package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/services"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	"github.com/verdantia/carbontrace/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// DataEntryFlow handles the data entry business logic
type DataEntryFlow interface {
	CreateEntry(ctx context.Context, userID uint, req *dto.CreateDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error)
	ProcessDocument(ctx context.Context, userID uint, filename string, document []byte, req *dto.ProcessDocumentRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error)
	ListEntries(ctx context.Context, userID uint, req *dto.ListDataEntriesRequest) (*dto.ListDataEntriesResponse, error)
	GetEntry(ctx context.Context, userID, entryID uint) (*dto.DataEntryDTO, error)
	UpdateEntry(ctx context.Context, userID, entryID uint, req *dto.UpdateDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error)
	VerifyEntry(ctx context.Context, userID, entryID uint, metadata *ClientMetadata) (*dto.DataEntryDTO, error)
	RejectEntry(ctx context.Context, userID, entryID uint, req *dto.RejectDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error)
	DeleteEntry(ctx context.Context, userID, entryID uint, metadata *ClientMetadata) error
	Stats(ctx context.Context, userID uint, year int) (*dto.DataEntryStatsResponse, error)
	ExportXLSX(ctx context.Context, userID uint, req *dto.ListDataEntriesRequest) (string, []byte, error)
}

// DataEntryFlowImpl implements the data entry business flow
type DataEntryFlowImpl struct {
	entryRepo    repository.DataEntryRepository
	categoryRepo repository.EmissionCategoryRepository
	facilityRepo repository.FacilityRepository
	userRepo     repository.UserRepository
	resolver     FactorResolver
	storage      services.StorageService
	extractor    services.ExtractionService
	db           *gorm.DB
}

// NewDataEntryFlow creates a new data entry flow instance
func NewDataEntryFlow(
	entryRepo repository.DataEntryRepository,
	categoryRepo repository.EmissionCategoryRepository,
	facilityRepo repository.FacilityRepository,
	userRepo repository.UserRepository,
	resolver FactorResolver,
	storage services.StorageService,
	extractor services.ExtractionService,
	db *gorm.DB,
) DataEntryFlow {
	return &DataEntryFlowImpl{
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		facilityRepo: facilityRepo,
		userRepo:     userRepo,
		resolver:     resolver,
		storage:      storage,
		extractor:    extractor,
		db:           db,
	}
}

// requireOrgUser loads the caller and checks organization membership
func (s *DataEntryFlowImpl) requireOrgUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return user, nil
}

// getOrgEntry loads an entry scoped to the organization
func (s *DataEntryFlowImpl) getOrgEntry(ctx context.Context, entryID, orgID uint) (*models.DataEntry, error) {
	entry, err := s.entryRepo.ByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.OrganizationID != orgID {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// checkFacility verifies an optional facility reference against the organization
func (s *DataEntryFlowImpl) checkFacility(ctx context.Context, facilityID *uint, orgID uint) error {
	if facilityID == nil {
		return nil
	}
	facility, err := s.facilityRepo.ByID(ctx, *facilityID)
	if err != nil {
		return err
	}
	if facility == nil || facility.OrganizationID != orgID {
		return ErrFacilityNotFound
	}
	return nil
}

// checkCategory verifies the category exists
func (s *DataEntryFlowImpl) checkCategory(ctx context.Context, categoryID uint) (*models.EmissionCategory, error) {
	category, err := s.categoryRepo.ByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func parseEntryDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ErrInvalidEntryDate
	}
	return date.UTC(), nil
}

// CreateEntry creates a manual entry; the emission pair is derived from the
// resolved factor, and a resolver miss leaves the pair null
func (s *DataEntryFlowImpl) CreateEntry(ctx context.Context, userID uint, req *dto.CreateDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}
	if req.Quantity < 0 {
		return nil, NewBusinessError("INVALID_QUANTITY", "Quantity must be non-negative", ErrInvalidQuantity)
	}

	entryDate, err := parseEntryDate(req.EntryDate)
	if err != nil {
		return nil, NewBusinessError("INVALID_ENTRY_DATE", "Entry date is invalid", err)
	}

	if _, err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, NewBusinessError("CATEGORY_NOT_FOUND", "Emission category not found", err)
	}
	if err := s.checkFacility(ctx, req.FacilityID, *user.OrganizationID); err != nil {
		return nil, NewBusinessError("FACILITY_NOT_FOUND", "Facility not found", err)
	}

	entry := &models.DataEntry{
		OrganizationID:     *user.OrganizationID,
		FacilityID:         req.FacilityID,
		CategoryID:         req.CategoryID,
		CreatedByUserID:    user.ID,
		EntryDate:          entryDate,
		Quantity:           req.Quantity,
		Unit:               strings.TrimSpace(req.Unit),
		VendorName:         req.VendorName,
		InvoiceNumber:      req.InvoiceNum,
		TotalCost:          req.TotalCost,
		Currency:           req.Currency,
		Notes:              req.Notes,
		VerificationStatus: utils.VerificationPending,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		factor, err := s.resolver.Resolve(txCtx, entry.CategoryID, entry.Unit, entry.EntryDate)
		if err != nil {
			return err
		}
		entry.SetEmission(Compute(entry.Quantity, factor))
		return s.entryRepo.Save(txCtx, entry)
	})
	if err != nil {
		return nil, NewBusinessError("ENTRY_CREATION_FAILED", "Data entry creation failed", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// ProcessDocument ingests a supplier document: upload, extract, fuzzy
// category match, resolve, compute, create. A category miss aborts; an
// unusable extractor response does not.
func (s *DataEntryFlowImpl) ProcessDocument(ctx context.Context, userID uint, filename string, document []byte, req *dto.ProcessDocumentRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}
	if len(document) == 0 {
		return nil, NewBusinessError("DOCUMENT_REQUIRED", "Document file is required", ErrDocumentRequired)
	}
	if err := s.checkFacility(ctx, req.FacilityID, *user.OrganizationID); err != nil {
		return nil, NewBusinessError("FACILITY_NOT_FOUND", "Facility not found", err)
	}

	documentURL, objectKey, err := s.storage.Upload(ctx, document, filename, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("DOCUMENT_UPLOAD_FAILED", "Document upload failed", err)
	}

	mimeType := services.DetectDocumentMimeType(document, filename)
	extracted, err := s.extractor.Extract(ctx, document, mimeType, req.Category)
	if err != nil {
		return nil, NewBusinessError("DOCUMENT_EXTRACTION_FAILED", "Document extraction failed", err)
	}

	category, err := s.categoryRepo.ByFuzzyName(ctx, req.Category)
	if err != nil {
		return nil, NewBusinessError("CATEGORY_LOOKUP_FAILED", "Failed to lookup category", err)
	}
	if category == nil {
		return nil, NewBusinessError("NO_CATEGORY_MATCH", "No emission category matches the document", ErrNoCategoryMatch)
	}

	status := utils.VerificationActionRequired
	if extracted.Confidence == utils.ConfidenceHigh {
		status = utils.VerificationPending
	}

	entry := &models.DataEntry{
		OrganizationID:     *user.OrganizationID,
		FacilityID:         req.FacilityID,
		CategoryID:         category.ID,
		CreatedByUserID:    user.ID,
		EntryDate:          extracted.Date,
		Quantity:           extracted.Consumption,
		Unit:               extracted.Unit,
		DocumentFilename:   &filename,
		DocumentURL:        &documentURL,
		ConfidenceLevel:    &extracted.Confidence,
		VerificationStatus: status,
	}
	if extracted.Vendor != "" {
		entry.VendorName = &extracted.Vendor
	}
	if extracted.TotalCost > 0 {
		entry.TotalCost = &extracted.TotalCost
	}
	if extracted.Currency != "" {
		entry.Currency = &extracted.Currency
	}
	if extracted.Notes != "" {
		entry.Notes = &extracted.Notes
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		factor, err := s.resolver.Resolve(txCtx, entry.CategoryID, entry.Unit, entry.EntryDate)
		if err != nil {
			return err
		}
		entry.SetEmission(Compute(entry.Quantity, factor))
		return s.entryRepo.Save(txCtx, entry)
	})
	if err != nil {
		// The uploaded object is orphaned; acceptable on this path
		log.Printf("data entry ingestion failed after upload, object %s orphaned: %v", objectKey, err)
		return nil, NewBusinessError("ENTRY_CREATION_FAILED", "Data entry creation failed", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// buildFilter converts a listing request to a repository filter
func (s *DataEntryFlowImpl) buildFilter(orgID uint, req *dto.ListDataEntriesRequest) (models.DataEntryFilter, error) {
	filter := models.DataEntryFilter{
		OrganizationID:     &orgID,
		FacilityID:         req.FacilityID,
		CategoryID:         req.CategoryID,
		VerificationStatus: req.VerificationStatus,
	}

	if req.DateFrom != nil {
		from, err := parseEntryDate(*req.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.EntryDateFrom = &from
	}
	if req.DateTo != nil {
		to, err := parseEntryDate(*req.DateTo)
		if err != nil {
			return filter, err
		}
		filter.EntryDateTo = &to
	}
	if filter.EntryDateFrom != nil && filter.EntryDateTo != nil && filter.EntryDateFrom.After(*filter.EntryDateTo) {
		return filter, ErrStartDateAfterEndDate
	}

	return filter, nil
}

// ListEntries lists entries with filters and pagination
func (s *DataEntryFlowImpl) ListEntries(ctx context.Context, userID uint, req *dto.ListDataEntriesRequest) (*dto.ListDataEntriesResponse, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	filter, err := s.buildFilter(*user.OrganizationID, req)
	if err != nil {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid listing filter", err)
	}

	total, err := s.entryRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ENTRY_LIST_FAILED", "Failed to count data entries", err)
	}

	entries, err := s.entryRepo.ByFilter(ctx, filter, "", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ENTRY_LIST_FAILED", "Failed to list data entries", err)
	}

	out := make([]dto.DataEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ToDataEntryDTO(*entry))
	}

	return &dto.ListDataEntriesResponse{
		Entries:  out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetEntry returns one entry scoped to the caller's organization
func (s *DataEntryFlowImpl) GetEntry(ctx context.Context, userID, entryID uint) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	entry, err := s.getOrgEntry(ctx, entryID, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_NOT_FOUND", "Data entry not found", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// UpdateEntry applies a partial update. When quantity, unit, or category is
// among the changed fields the emission pair is recomputed from the
// effective post-update values and overwritten atomically, including to
// null when no factor applies anymore.
func (s *DataEntryFlowImpl) UpdateEntry(ctx context.Context, userID, entryID uint, req *dto.UpdateDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}
	if !req.HasFields() {
		return nil, NewBusinessError("EMPTY_UPDATE", "At least one field must be provided for update", ErrEmptyUpdate)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, NewBusinessError("INVALID_QUANTITY", "Quantity must be non-negative", ErrInvalidQuantity)
	}

	var entry *models.DataEntry
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		entry, err = s.getOrgEntry(txCtx, entryID, *user.OrganizationID)
		if err != nil {
			return err
		}

		if req.CategoryID != nil {
			if _, err := s.checkCategory(txCtx, *req.CategoryID); err != nil {
				return err
			}
			entry.CategoryID = *req.CategoryID
		}
		if req.FacilityID != nil {
			if err := s.checkFacility(txCtx, req.FacilityID, *user.OrganizationID); err != nil {
				return err
			}
			entry.FacilityID = req.FacilityID
		}
		if req.EntryDate != nil {
			entryDate, err := parseEntryDate(*req.EntryDate)
			if err != nil {
				return err
			}
			entry.EntryDate = entryDate
		}
		if req.Quantity != nil {
			entry.Quantity = *req.Quantity
		}
		if req.Unit != nil {
			entry.Unit = strings.TrimSpace(*req.Unit)
		}
		if req.VendorName != nil {
			entry.VendorName = req.VendorName
		}
		if req.InvoiceNum != nil {
			entry.InvoiceNumber = req.InvoiceNum
		}
		if req.TotalCost != nil {
			entry.TotalCost = req.TotalCost
		}
		if req.Currency != nil {
			entry.Currency = req.Currency
		}
		if req.Notes != nil {
			entry.Notes = req.Notes
		}

		if req.TouchesEmission() {
			factor, err := s.resolver.Resolve(txCtx, entry.CategoryID, entry.Unit, entry.EntryDate)
			if err != nil {
				return err
			}
			entry.SetEmission(Compute(entry.Quantity, factor))
		}

		return s.entryRepo.Update(txCtx, entry)
	})
	if err != nil {
		if IsEntryNotFound(err) || IsCategoryNotFound(err) || IsFacilityNotFound(err) ||
			IsInvalidEntryDate(err) {
			return nil, NewBusinessError("ENTRY_UPDATE_REJECTED", "Data entry update rejected", err)
		}
		return nil, NewBusinessError("ENTRY_UPDATE_FAILED", "Data entry update failed", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// VerifyEntry marks an entry verified, refreshing the reviewer and timestamp
// even when already verified
func (s *DataEntryFlowImpl) VerifyEntry(ctx context.Context, userID, entryID uint, metadata *ClientMetadata) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	entry, err := s.getOrgEntry(ctx, entryID, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_NOT_FOUND", "Data entry not found", err)
	}

	entry.VerificationStatus = utils.VerificationVerified
	entry.VerifiedByUserID = &user.ID
	entry.VerifiedAt = utils.UTCNowPtr()

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, NewBusinessError("ENTRY_VERIFY_FAILED", "Data entry verification failed", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// RejectEntry marks an entry action_required, overwriting notes when given.
// Verified fields are left intact for audit.
func (s *DataEntryFlowImpl) RejectEntry(ctx context.Context, userID, entryID uint, req *dto.RejectDataEntryRequest, metadata *ClientMetadata) (*dto.DataEntryDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	entry, err := s.getOrgEntry(ctx, entryID, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_NOT_FOUND", "Data entry not found", err)
	}

	entry.VerificationStatus = utils.VerificationActionRequired
	if req != nil && req.Notes != nil {
		entry.Notes = req.Notes
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, NewBusinessError("ENTRY_REJECT_FAILED", "Data entry rejection failed", err)
	}

	out := ToDataEntryDTO(*entry)
	return &out, nil
}

// objectKeyFromURL recovers the storage object key from a document URL
func objectKeyFromURL(documentURL string) string {
	if idx := strings.Index(documentURL, "organizations/"); idx >= 0 {
		return documentURL[idx:]
	}
	return ""
}

// DeleteEntry deletes the row, then best-effort deletes the attached
// document; a storage failure is logged and swallowed
func (s *DataEntryFlowImpl) DeleteEntry(ctx context.Context, userID, entryID uint, metadata *ClientMetadata) error {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	entry, err := s.getOrgEntry(ctx, entryID, *user.OrganizationID)
	if err != nil {
		return NewBusinessError("ENTRY_NOT_FOUND", "Data entry not found", err)
	}

	if err := s.entryRepo.Delete(ctx, entry.ID, entry.OrganizationID); err != nil {
		return NewBusinessError("ENTRY_DELETE_FAILED", "Data entry deletion failed", err)
	}

	if entry.DocumentURL != nil {
		if objectKey := objectKeyFromURL(*entry.DocumentURL); objectKey != "" {
			if err := s.storage.Delete(ctx, objectKey); err != nil {
				log.Printf("failed to delete document %s for removed entry %d: %v", objectKey, entry.ID, err)
			}
		}
	}

	return nil
}

// Stats aggregates the organization's entries for one year (default: current)
func (s *DataEntryFlowImpl) Stats(ctx context.Context, userID uint, year int) (*dto.DataEntryStatsResponse, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	if year == 0 {
		year = utils.UTCNow().Year()
	}

	stats, err := s.entryRepo.StatsForYear(ctx, *user.OrganizationID, year)
	if err != nil {
		return nil, NewBusinessError("ENTRY_STATS_FAILED", "Failed to aggregate data entries", err)
	}

	return &dto.DataEntryStatsResponse{
		Year:                  year,
		TotalEntries:          stats.TotalEntries,
		TotalEmissionsKg:      stats.TotalEmissionsKg,
		FacilitiesWithData:    stats.FacilitiesWithData,
		VerifiedEntries:       stats.VerifiedEntries,
		ActionRequiredEntries: stats.ActionRequiredEntries,
	}, nil
}

// exportCap bounds the number of rows in one xlsx export
const exportCap = 10000

// ExportXLSX writes the filtered listing to an xlsx workbook
func (s *DataEntryFlowImpl) ExportXLSX(ctx context.Context, userID uint, req *dto.ListDataEntriesRequest) (string, []byte, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return "", nil, NewBusinessError("ENTRY_ACCESS_DENIED", "Data entry access denied", err)
	}

	filter, err := s.buildFilter(*user.OrganizationID, req)
	if err != nil {
		return "", nil, NewBusinessError("INVALID_FILTER", "Invalid listing filter", err)
	}

	entries, err := s.entryRepo.ByFilter(ctx, filter, "", exportCap, 0)
	if err != nil {
		return "", nil, NewBusinessError("ENTRY_LIST_FAILED", "Failed to list data entries", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Data Entries"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"id", "entry_date", "category_id", "facility_id", "quantity", "unit", "co2e_kg", "emission_factor_id", "vendor_name", "invoice_number", "total_cost", "currency", "verification_status", "confidence_level", "notes", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, entry := range entries {
		record := []any{
			entry.ID,
			entry.EntryDate.Format("2006-01-02"),
			entry.CategoryID,
			derefOrEmpty(entry.FacilityID),
			entry.Quantity,
			entry.Unit,
			derefOrEmpty(entry.CO2eKg),
			derefOrEmpty(entry.EmissionFactorID),
			derefOrEmpty(entry.VendorName),
			derefOrEmpty(entry.InvoiceNumber),
			derefOrEmpty(entry.TotalCost),
			derefOrEmpty(entry.Currency),
			entry.VerificationStatus,
			derefOrEmpty(entry.ConfidenceLevel),
			derefOrEmpty(entry.Notes),
			entry.CreatedAt.Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("data_entries_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// derefOrEmpty flattens an optional column for export
func derefOrEmpty[T any](value *T) any {
	if value == nil {
		return ""
	}
	return *value
}
