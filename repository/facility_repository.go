package repository

import (
	"context"
	"fmt"

	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// FacilityRepositoryImpl implements FacilityRepository interface
type FacilityRepositoryImpl struct {
	*BaseRepository[models.Facility, models.FacilityFilter]
}

// NewFacilityRepository creates a new facility repository
func NewFacilityRepository(db *gorm.DB) FacilityRepository {
	return &FacilityRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Facility, models.FacilityFilter](db),
	}
}

// Update persists changes to an existing facility
func (r *FacilityRepositoryImpl) Update(ctx context.Context, facility *models.Facility) error {
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

	facility.UpdatedAt = utils.UTCNow()
	err = db.Save(facility).Error
	if err != nil {
		return fmt.Errorf("failed to update facility: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a facility
func (r *FacilityRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
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

	err = db.Model(&models.Facility{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate facility: %w", err)
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *FacilityRepositoryImpl) applyFilter(query *gorm.DB, filter models.FacilityFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves facilities based on filter criteria
func (r *FacilityRepositoryImpl) ByFilter(ctx context.Context, filter models.FacilityFilter, orderBy string, limit, offset int) ([]*models.Facility, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Facility{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Facility
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of facilities matching filter
func (r *FacilityRepositoryImpl) Count(ctx context.Context, filter models.FacilityFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Facility{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any facility matches the filter
func (r *FacilityRepositoryImpl) Exists(ctx context.Context, filter models.FacilityFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
