package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// EmissionFactor converts a quantity of a resource into kilograms of CO2e.
// Reference data: read by the resolver, never written by this service.
// Table: emission_factors
// Several factors may exist per (category, unit) across years; resolution
// picks the newest active one whose validity window covers the as-of date
// (year DESC, created_at DESC)
// ValidUntil is a date; nil means open-ended
type EmissionFactor struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	CategoryID  uint       `gorm:"not null;index:idx_factor_lookup" json:"category_id"`
	Unit        string     `gorm:"type:varchar(32);not null;index:idx_factor_lookup" json:"unit"`
	CO2ePerUnit float64    `gorm:"type:decimal(18,8);not null" json:"co2e_per_unit"`
	Year        int        `gorm:"not null" json:"year"`
	ValidUntil  *time.Time `gorm:"type:date" json:"valid_until,omitempty"`
	IsActive    bool       `gorm:"not null;default:true;index:idx_factor_lookup" json:"is_active"`
	Source      string     `gorm:"type:varchar(255);not null" json:"source"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Category *EmissionCategory `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
}

func (EmissionFactor) TableName() string { return "emission_factors" }

// BeforeCreate ensures UUID and timestamp are set
func (f *EmissionFactor) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CoversDate reports whether the factor's validity window includes the given date
func (f *EmissionFactor) CoversDate(asOf time.Time) bool {
	return f.ValidUntil == nil || !f.ValidUntil.Before(asOf)
}

// EmissionFactorFilter represents filter criteria for factor queries
type EmissionFactorFilter struct {
	ID         *uint   `json:"id,omitempty"`
	CategoryID *uint   `json:"category_id,omitempty"`
	Unit       *string `json:"unit,omitempty"`
	Year       *int    `json:"year,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}
