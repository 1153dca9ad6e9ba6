package repository

import (
	"context"
	"errors"
	"time"

	"github.com/verdantia/carbontrace/models"
	"gorm.io/gorm"
)

// EmissionFactorRepositoryImpl implements EmissionFactorRepository interface
type EmissionFactorRepositoryImpl struct {
	*BaseRepository[models.EmissionFactor, models.EmissionFactorFilter]
}

// NewEmissionFactorRepository creates a new emission factor repository
func NewEmissionFactorRepository(db *gorm.DB) EmissionFactorRepository {
	return &EmissionFactorRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EmissionFactor, models.EmissionFactorFilter](db),
	}
}

// ResolveCurrent returns the single factor applicable to (categoryID, unit)
// as of the given date, or nil when none matches. Newest reference year wins;
// created_at breaks ties within a year.
func (r *EmissionFactorRepositoryImpl) ResolveCurrent(ctx context.Context, categoryID uint, unit string, asOf time.Time) (*models.EmissionFactor, error) {
	db := r.getDB(ctx)

	var row models.EmissionFactor
	err := db.Model(&models.EmissionFactor{}).
		Where("category_id = ?", categoryID).
		Where("LOWER(unit) = LOWER(?)", unit).
		Where("is_active = ?", true).
		Where("valid_until IS NULL OR valid_until >= ?", asOf).
		Order("year DESC, created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *EmissionFactorRepositoryImpl) applyFilter(query *gorm.DB, filter models.EmissionFactorFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Unit != nil {
		query = query.Where("LOWER(unit) = LOWER(?)", *filter.Unit)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves factors based on filter criteria
func (r *EmissionFactorRepositoryImpl) ByFilter(ctx context.Context, filter models.EmissionFactorFilter, orderBy string, limit, offset int) ([]*models.EmissionFactor, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmissionFactor{}), filter)

	if orderBy == "" {
		orderBy = "year DESC, created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.EmissionFactor
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of factors matching filter
func (r *EmissionFactorRepositoryImpl) Count(ctx context.Context, filter models.EmissionFactorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmissionFactor{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any factor matches the filter
func (r *EmissionFactorRepositoryImpl) Exists(ctx context.Context, filter models.EmissionFactorFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
