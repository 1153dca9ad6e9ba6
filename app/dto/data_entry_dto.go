package dto

// CreateDataEntryRequest represents the manual data entry form data
type CreateDataEntryRequest struct {
	FacilityID *uint    `json:"facility_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID uint     `json:"category_id" validate:"required,gt=0"`
	EntryDate  string   `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Quantity   float64  `json:"quantity" validate:"gte=0"`
	Unit       string   `json:"unit" validate:"required,max=32"`
	VendorName *string  `json:"vendor_name,omitempty" validate:"omitempty,max=255"`
	InvoiceNum *string  `json:"invoice_number,omitempty" validate:"omitempty,max=128"`
	TotalCost  *float64 `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	Currency   *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes      *string  `json:"notes,omitempty"`
}

// UpdateDataEntryRequest represents a partial data entry update.
// Presence is carried by pointers: a nil field is untouched, a non-nil
// field overwrites. Quantity, unit, or category changes trigger emission
// recomputation with the effective post-update values.
type UpdateDataEntryRequest struct {
	FacilityID *uint    `json:"facility_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID *uint    `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	EntryDate  *string  `json:"entry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Quantity   *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit       *string  `json:"unit,omitempty" validate:"omitempty,max=32"`
	VendorName *string  `json:"vendor_name,omitempty" validate:"omitempty,max=255"`
	InvoiceNum *string  `json:"invoice_number,omitempty" validate:"omitempty,max=128"`
	TotalCost  *float64 `json:"total_cost,omitempty" validate:"omitempty,gte=0"`
	Currency   *string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes      *string  `json:"notes,omitempty"`
}

// HasFields reports whether the update carries at least one field
func (r *UpdateDataEntryRequest) HasFields() bool {
	return r.FacilityID != nil || r.CategoryID != nil || r.EntryDate != nil ||
		r.Quantity != nil || r.Unit != nil || r.VendorName != nil ||
		r.InvoiceNum != nil || r.TotalCost != nil || r.Currency != nil ||
		r.Notes != nil
}

// TouchesEmission reports whether the update changes an input of the
// emission computation
func (r *UpdateDataEntryRequest) TouchesEmission() bool {
	return r.Quantity != nil || r.Unit != nil || r.CategoryID != nil
}

// ProcessDocumentRequest carries the non-file fields of a document upload
type ProcessDocumentRequest struct {
	FacilityID *uint  `json:"facility_id,omitempty" validate:"omitempty,gt=0"`
	Category   string `json:"category" validate:"required,max=128"`
}

// ListDataEntriesRequest represents listing filters (query parameters)
type ListDataEntriesRequest struct {
	FacilityID         *uint   `query:"facility_id" validate:"omitempty,gt=0"`
	CategoryID         *uint   `query:"category_id" validate:"omitempty,gt=0"`
	DateFrom           *string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo             *string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	VerificationStatus *string `query:"status" validate:"omitempty,oneof=pending verified action_required"`
	Page               int     `query:"page" validate:"omitempty,gte=1"`
	PageSize           int     `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// RejectDataEntryRequest carries the optional reviewer notes of a rejection
type RejectDataEntryRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// DataEntryDTO represents data entry data for API responses
type DataEntryDTO struct {
	ID                 uint     `json:"id"`
	UUID               string   `json:"uuid"`
	OrganizationID     uint     `json:"organization_id"`
	FacilityID         *uint    `json:"facility_id,omitempty"`
	CategoryID         uint     `json:"category_id"`
	CreatedByUserID    uint     `json:"created_by_user_id"`
	EntryDate          string   `json:"entry_date"`
	Quantity           float64  `json:"quantity"`
	Unit               string   `json:"unit"`
	EmissionFactorID   *uint    `json:"emission_factor_id,omitempty"`
	CO2eKg             *float64 `json:"co2e_kg,omitempty"`
	DocumentFilename   *string  `json:"document_filename,omitempty"`
	DocumentURL        *string  `json:"document_url,omitempty"`
	VendorName         *string  `json:"vendor_name,omitempty"`
	InvoiceNumber      *string  `json:"invoice_number,omitempty"`
	TotalCost          *float64 `json:"total_cost,omitempty"`
	Currency           *string  `json:"currency,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
	ConfidenceLevel    *string  `json:"confidence_level,omitempty"`
	VerificationStatus string   `json:"verification_status"`
	VerifiedByUserID   *uint    `json:"verified_by_user_id,omitempty"`
	VerifiedAt         *string  `json:"verified_at,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// ListDataEntriesResponse lists entries with pagination info
type ListDataEntriesResponse struct {
	Entries  []DataEntryDTO `json:"entries"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// DataEntryStatsRequest selects the stats year (query parameter)
type DataEntryStatsRequest struct {
	Year int `query:"year" validate:"omitempty,gte=2000,lte=2100"`
}

// DataEntryStatsResponse aggregates an organization's entries for one year
type DataEntryStatsResponse struct {
	Year                  int     `json:"year"`
	TotalEntries          int64   `json:"total_entries"`
	TotalEmissionsKg      float64 `json:"total_emissions_kg"`
	FacilitiesWithData    int64   `json:"facilities_with_data"`
	VerifiedEntries       int64   `json:"verified_entries"`
	ActionRequiredEntries int64   `json:"action_required_entries"`
}
