package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/verdantia/carbontrace/models"
	"gorm.io/gorm"
)

// EmissionCategoryRepositoryImpl implements EmissionCategoryRepository interface
type EmissionCategoryRepositoryImpl struct {
	*BaseRepository[models.EmissionCategory, models.EmissionCategoryFilter]
}

// NewEmissionCategoryRepository creates a new emission category repository
func NewEmissionCategoryRepository(db *gorm.DB) EmissionCategoryRepository {
	return &EmissionCategoryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EmissionCategory, models.EmissionCategoryFilter](db),
	}
}

// ByFuzzyName finds the newest category whose name contains the query, case-insensitively
func (r *EmissionCategoryRepositoryImpl) ByFuzzyName(ctx context.Context, name string) (*models.EmissionCategory, error) {
	db := r.getDB(ctx)
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"

	var row models.EmissionCategory
	err := db.Model(&models.EmissionCategory{}).
		Where("LOWER(name) LIKE ?", pattern).
		Order("created_at DESC").
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
func (r *EmissionCategoryRepositoryImpl) applyFilter(query *gorm.DB, filter models.EmissionCategoryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Scope != nil {
		query = query.Where("scope = ?", *filter.Scope)
	}
	return query
}

// ByFilter retrieves categories based on filter criteria
func (r *EmissionCategoryRepositoryImpl) ByFilter(ctx context.Context, filter models.EmissionCategoryFilter, orderBy string, limit, offset int) ([]*models.EmissionCategory, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmissionCategory{}), filter)

	if orderBy == "" {
		orderBy = "name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.EmissionCategory
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of categories matching filter
func (r *EmissionCategoryRepositoryImpl) Count(ctx context.Context, filter models.EmissionCategoryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmissionCategory{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any category matches the filter
func (r *EmissionCategoryRepositoryImpl) Exists(ctx context.Context, filter models.EmissionCategoryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
