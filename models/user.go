package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// User represents an account that can authenticate and act inside an organization
// Table: users
// OrganizationID is nullable: a freshly registered user belongs to no tenant
// until they create or join one
// Role is only meaningful while OrganizationID is set
type User struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash   string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName       string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Role           string     `gorm:"type:varchar(16);not null;default:'member';index" json:"role"`
	JobTitle       *string    `gorm:"type:varchar(128)" json:"job_title,omitempty"`
	OrganizationID *uint      `gorm:"index" json:"organization_id,omitempty"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
}

func (User) TableName() string { return "users" }

// BeforeCreate ensures UUID and timestamps are set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CanManageFacilities reports whether the user's role allows facility mutations
func (u *User) CanManageFacilities() bool {
	return u.Role == utils.RoleAdmin || u.Role == utils.RoleManager
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	Email          *string    `json:"email,omitempty"`
	OrganizationID *uint      `json:"organization_id,omitempty"`
	Role           *string    `json:"role,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}
