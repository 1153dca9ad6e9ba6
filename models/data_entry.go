package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// Emission is the derived (factor id, co2e kg) pair of a data entry.
// The two values are meaningless apart, so they travel as one optional
// value: a nil *Emission means "no applicable factor", and both columns
// are written or cleared together.
type Emission struct {
	FactorID uint
	CO2eKg   float64
}

// DataEntry is a single resource-consumption record inside an organization
// Table: data_entries
// EmissionFactorID/CO2eKg are only ever mutated through SetEmission and
// ClearEmission; CO2eKg is derived, never user-supplied
// FacilityID and the document fields are soft references: removing the
// facility or document does not cascade here
type DataEntry struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	OrganizationID   uint      `gorm:"not null;index" json:"organization_id"`
	FacilityID       *uint     `gorm:"index" json:"facility_id,omitempty"`
	CategoryID       uint      `gorm:"not null;index" json:"category_id"`
	CreatedByUserID  uint      `gorm:"not null;index" json:"created_by_user_id"`
	EntryDate        time.Time `gorm:"type:date;not null;index" json:"entry_date"`
	Quantity         float64   `gorm:"type:decimal(18,6);not null" json:"quantity"`
	Unit             string    `gorm:"type:varchar(32);not null" json:"unit"`
	EmissionFactorID *uint     `json:"emission_factor_id,omitempty"`
	CO2eKg           *float64  `gorm:"type:decimal(18,6);column:co2e_kg" json:"co2e_kg,omitempty"`

	DocumentFilename *string  `gorm:"type:varchar(512)" json:"document_filename,omitempty"`
	DocumentURL      *string  `gorm:"type:varchar(1024)" json:"document_url,omitempty"`
	VendorName       *string  `gorm:"type:varchar(255)" json:"vendor_name,omitempty"`
	InvoiceNumber    *string  `gorm:"type:varchar(128)" json:"invoice_number,omitempty"`
	TotalCost        *float64 `gorm:"type:decimal(18,2)" json:"total_cost,omitempty"`
	Currency         *string  `gorm:"type:varchar(8)" json:"currency,omitempty"`
	Notes            *string  `gorm:"type:text" json:"notes,omitempty"`

	ConfidenceLevel    *string    `gorm:"type:varchar(8)" json:"confidence_level,omitempty"`
	VerificationStatus string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"verification_status"`
	VerifiedByUserID   *uint      `json:"verified_by_user_id,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Organization *Organization     `gorm:"foreignKey:OrganizationID;references:ID;constraint:OnDelete:CASCADE" json:"organization,omitempty"`
	Facility     *Facility         `gorm:"foreignKey:FacilityID;references:ID" json:"facility,omitempty"`
	Category     *EmissionCategory `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Factor       *EmissionFactor   `gorm:"foreignKey:EmissionFactorID;references:ID" json:"factor,omitempty"`
	CreatedBy    *User             `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by,omitempty"`
}

func (DataEntry) TableName() string { return "data_entries" }

// BeforeCreate ensures UUID, timestamps, and status default are set
func (e *DataEntry) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if e.VerificationStatus == "" {
		e.VerificationStatus = utils.VerificationPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// SetEmission writes the derived pair; a nil emission clears both columns
func (e *DataEntry) SetEmission(em *Emission) {
	if em == nil {
		e.EmissionFactorID = nil
		e.CO2eKg = nil
		return
	}
	factorID := em.FactorID
	kg := em.CO2eKg
	e.EmissionFactorID = &factorID
	e.CO2eKg = &kg
}

// ClearEmission clears both columns of the derived pair
func (e *DataEntry) ClearEmission() {
	e.SetEmission(nil)
}

// EmissionValue returns the derived pair, or nil when no factor applied
func (e *DataEntry) EmissionValue() *Emission {
	if e.EmissionFactorID == nil || e.CO2eKg == nil {
		return nil
	}
	return &Emission{FactorID: *e.EmissionFactorID, CO2eKg: *e.CO2eKg}
}

// DataEntryFilter represents filter criteria for data entry queries
type DataEntryFilter struct {
	ID                 *uint      `json:"id,omitempty"`
	UUID               *uuid.UUID `json:"uuid,omitempty"`
	OrganizationID     *uint      `json:"organization_id,omitempty"`
	FacilityID         *uint      `json:"facility_id,omitempty"`
	CategoryID         *uint      `json:"category_id,omitempty"`
	CreatedByUserID    *uint      `json:"created_by_user_id,omitempty"`
	EntryDateFrom      *time.Time `json:"entry_date_from,omitempty"`
	EntryDateTo        *time.Time `json:"entry_date_to,omitempty"`
	VerificationStatus *string    `json:"verification_status,omitempty"`
}

// DataEntryStats aggregates an organization's entries for one year
type DataEntryStats struct {
	TotalEntries          int64   `json:"total_entries"`
	TotalEmissionsKg      float64 `json:"total_emissions_kg"`
	FacilitiesWithData    int64   `json:"facilities_with_data"`
	VerifiedEntries       int64   `json:"verified_entries"`
	ActionRequiredEntries int64   `json:"action_required_entries"`
}
