package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// Facility represents a physical site belonging to an organization
// Table: facilities
// Removal is a soft delete (IsActive=false); data entries keep their
// facility_id reference after removal
type Facility struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	FacilityType   *string   `gorm:"type:varchar(64)" json:"facility_type,omitempty"`
	Address        *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	City           *string   `gorm:"type:varchar(128)" json:"city,omitempty"`
	State          *string   `gorm:"type:varchar(128)" json:"state,omitempty"`
	Country        *string   `gorm:"type:varchar(128)" json:"country,omitempty"`
	PostalCode     *string   `gorm:"type:varchar(32)" json:"postal_code,omitempty"`
	Latitude       *float64  `gorm:"type:decimal(9,6)" json:"latitude,omitempty"`
	Longitude      *float64  `gorm:"type:decimal(9,6)" json:"longitude,omitempty"`
	GridRegion     *string   `gorm:"type:varchar(64)" json:"grid_region,omitempty"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID;references:ID;constraint:OnDelete:CASCADE" json:"organization,omitempty"`
}

func (Facility) TableName() string { return "facilities" }

// BeforeCreate ensures UUID and timestamps are set
func (f *Facility) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = utils.UTCNow()
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// FacilityFilter represents filter criteria for facility queries
type FacilityFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	OrganizationID *uint      `json:"organization_id,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}
