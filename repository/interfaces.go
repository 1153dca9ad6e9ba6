// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/verdantia/carbontrace/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// OrganizationRepository defines operations for organizations
type OrganizationRepository interface {
	Repository[models.Organization, models.OrganizationFilter]
	ByFiscalID(ctx context.Context, fiscalID string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	MemberCount(ctx context.Context, orgID uint) (int64, error)
	FacilityCount(ctx context.Context, orgID uint) (int64, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ListByOrganization(ctx context.Context, orgID uint) ([]*models.User, error)
}

// FacilityRepository defines operations for facilities
type FacilityRepository interface {
	Repository[models.Facility, models.FacilityFilter]
	Update(ctx context.Context, facility *models.Facility) error
	Deactivate(ctx context.Context, id uint) error
}

// EmissionCategoryRepository defines read operations for category reference data
type EmissionCategoryRepository interface {
	Repository[models.EmissionCategory, models.EmissionCategoryFilter]
	// ByFuzzyName finds the newest category whose name contains the query,
	// case-insensitively. Used by the OCR ingestion path.
	ByFuzzyName(ctx context.Context, name string) (*models.EmissionCategory, error)
}

// EmissionFactorRepository defines read operations for factor reference data
type EmissionFactorRepository interface {
	Repository[models.EmissionFactor, models.EmissionFactorFilter]
	// ResolveCurrent returns the single factor applicable to (categoryID,
	// unit) as of the given date, or nil when none matches. Unit comparison
	// is case-insensitive; ordering is year DESC, created_at DESC.
	ResolveCurrent(ctx context.Context, categoryID uint, unit string, asOf time.Time) (*models.EmissionFactor, error)
}

// DataEntryRepository defines operations for data entries
type DataEntryRepository interface {
	Repository[models.DataEntry, models.DataEntryFilter]
	Update(ctx context.Context, entry *models.DataEntry) error
	Delete(ctx context.Context, id uint, orgID uint) error
	StatsForYear(ctx context.Context, orgID uint, year int) (*models.DataEntryStats, error)
}
