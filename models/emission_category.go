package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// EmissionCategory identifies a type of resource consumption (electricity,
// water, fuel, ...). Reference data: seeded, never mutated by this service.
// Table: emission_categories
// Scope follows the GHG Protocol classification (1, 2, 3) and is used for
// display only, never in computation
type EmissionCategory struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Name        string    `gorm:"type:varchar(128);not null;index" json:"name"`
	Scope       int16     `gorm:"not null" json:"scope"`
	Icon        *string   `gorm:"type:varchar(64)" json:"icon,omitempty"`
	DefaultUnit *string   `gorm:"type:varchar(32)" json:"default_unit,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EmissionCategory) TableName() string { return "emission_categories" }

// BeforeCreate ensures UUID and timestamp are set
func (c *EmissionCategory) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// EmissionCategoryFilter represents filter criteria for category queries
type EmissionCategoryFilter struct {
	ID    *uint   `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Scope *int16  `json:"scope,omitempty"`
}
