package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// Organization represents a tenant in the system
// Table: organizations
// FiscalID is unique across tenants; creating a second organization with the
// same fiscal ID is a conflict
type Organization struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID               uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	LegalName          string    `gorm:"type:varchar(255);not null" json:"legal_name"`
	FiscalID           string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"fiscal_id"`
	IndustrySector     *string   `gorm:"type:varchar(128)" json:"industry_sector,omitempty"`
	GeographicLocation *string   `gorm:"type:varchar(255)" json:"geographic_location,omitempty"`
	LogoURL            *string   `gorm:"type:varchar(512)" json:"logo_url,omitempty"`
	DefaultCurrency    string    `gorm:"type:varchar(8);not null;default:'USD'" json:"default_currency"`
	Language           string    `gorm:"type:varchar(8);not null;default:'en'" json:"language"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

// BeforeCreate ensures UUID and timestamps are set
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// OrganizationFilter represents filter criteria for organization queries
type OrganizationFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	FiscalID *string    `json:"fiscal_id,omitempty"`
}
