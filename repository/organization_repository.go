package repository

import (
	"context"
	"fmt"

	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// OrganizationRepositoryImpl implements OrganizationRepository interface
type OrganizationRepositoryImpl struct {
	*BaseRepository[models.Organization, models.OrganizationFilter]
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Organization, models.OrganizationFilter](db),
	}
}

// ByFiscalID retrieves an organization by its fiscal ID
func (r *OrganizationRepositoryImpl) ByFiscalID(ctx context.Context, fiscalID string) (*models.Organization, error) {
	rows, err := r.ByFilter(ctx, models.OrganizationFilter{FiscalID: &fiscalID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update persists changes to an existing organization
func (r *OrganizationRepositoryImpl) Update(ctx context.Context, org *models.Organization) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	org.UpdatedAt = utils.UTCNow()
	err = db.Save(org).Error
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

// MemberCount returns the number of active users attached to the organization
func (r *OrganizationRepositoryImpl) MemberCount(ctx context.Context, orgID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.User{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FacilityCount returns the number of active facilities in the organization
func (r *OrganizationRepositoryImpl) FacilityCount(ctx context.Context, orgID uint) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Facility{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OrganizationRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrganizationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.FiscalID != nil {
		query = query.Where("fiscal_id = ?", *filter.FiscalID)
	}
	return query
}

// ByFilter retrieves organizations based on filter criteria
func (r *OrganizationRepositoryImpl) ByFilter(ctx context.Context, filter models.OrganizationFilter, orderBy string, limit, offset int) ([]*models.Organization, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Organization{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Organization
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of organizations matching filter
func (r *OrganizationRepositoryImpl) Count(ctx context.Context, filter models.OrganizationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Organization{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any organization matches the filter
func (r *OrganizationRepositoryImpl) Exists(ctx context.Context, filter models.OrganizationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
