package repository

import (
	"context"
	"fmt"

	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// DataEntryRepositoryImpl implements DataEntryRepository interface
type DataEntryRepositoryImpl struct {
	*BaseRepository[models.DataEntry, models.DataEntryFilter]
}

// NewDataEntryRepository creates a new data entry repository
func NewDataEntryRepository(db *gorm.DB) DataEntryRepository {
	return &DataEntryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DataEntry, models.DataEntryFilter](db),
	}
}

// Update persists changes to an existing entry. A full-column update is used
// so a cleared emission pair reaches the database as NULL, not as an omitted
// zero value.
func (r *DataEntryRepositoryImpl) Update(ctx context.Context, entry *models.DataEntry) error {
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

	entry.UpdatedAt = utils.UTCNow()
	err = db.Model(entry).Select("*").Omit("id", "uuid", "created_at").Updates(entry).Error
	if err != nil {
		return fmt.Errorf("failed to update data entry: %w", err)
	}
	return nil
}

// Delete removes an entry, scoped to the owning organization
func (r *DataEntryRepositoryImpl) Delete(ctx context.Context, id uint, orgID uint) error {
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

	err = db.Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.DataEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete data entry: %w", err)
	}
	return nil
}

// StatsForYear aggregates the organization's entries for one calendar year
func (r *DataEntryRepositoryImpl) StatsForYear(ctx context.Context, orgID uint, year int) (*models.DataEntryStats, error) {
	db := r.getDB(ctx)

	var stats models.DataEntryStats
	err := db.Model(&models.DataEntry{}).
		Select(`COUNT(*) AS total_entries,
			COALESCE(SUM(co2e_kg), 0) AS total_emissions_kg,
			COUNT(DISTINCT facility_id) AS facilities_with_data,
			COUNT(*) FILTER (WHERE verification_status = ?) AS verified_entries,
			COUNT(*) FILTER (WHERE verification_status = ?) AS action_required_entries`,
			utils.VerificationVerified, utils.VerificationActionRequired).
		Where("organization_id = ?", orgID).
		Where("EXTRACT(YEAR FROM entry_date) = ?", year).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate data entry stats: %w", err)
	}
	return &stats, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *DataEntryRepositoryImpl) applyFilter(query *gorm.DB, filter models.DataEntryFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.FacilityID != nil {
		query = query.Where("facility_id = ?", *filter.FacilityID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.CreatedByUserID != nil {
		query = query.Where("created_by_user_id = ?", *filter.CreatedByUserID)
	}
	if filter.EntryDateFrom != nil {
		query = query.Where("entry_date >= ?", *filter.EntryDateFrom)
	}
	if filter.EntryDateTo != nil {
		query = query.Where("entry_date <= ?", *filter.EntryDateTo)
	}
	if filter.VerificationStatus != nil {
		query = query.Where("verification_status = ?", *filter.VerificationStatus)
	}
	return query
}

// ByFilter retrieves data entries based on filter criteria
func (r *DataEntryRepositoryImpl) ByFilter(ctx context.Context, filter models.DataEntryFilter, orderBy string, limit, offset int) ([]*models.DataEntry, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DataEntry{}), filter)

	if orderBy == "" {
		orderBy = "entry_date DESC, id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.DataEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of data entries matching filter
func (r *DataEntryRepositoryImpl) Count(ctx context.Context, filter models.DataEntryFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DataEntry{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any data entry matches the filter
func (r *DataEntryRepositoryImpl) Exists(ctx context.Context, filter models.DataEntryFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
