// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
)

// ProfileRepositoryImpl implements ProfileRepository interface
type ProfileRepositoryImpl struct {
	*BaseRepository[models.Profile, models.ProfileFilter]
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Profile, models.ProfileFilter](db),
	}
}

// DistinctCityPairs snapshots the distinct eligible (city, agency) pairs for
// one agency. Rows with a NULL city or agency contribute nothing.
func (r *ProfileRepositoryImpl) DistinctCityPairs(ctx context.Context, agencyID uint) ([]models.AgencyCityPair, error) {
	db := r.getDB(ctx)

	var pairs []models.AgencyCityPair
	err := db.Model(&models.Profile{}).
		Select("city_id, agency_id").
		Where("is_broken = ? AND is_archived = ?", false, false).
		Where("agency_id IS NOT NULL AND city_id IS NOT NULL").
		Where("agency_id = ?", agencyID).
		Group("city_id, agency_id").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot agency city pairs: %w", err)
	}

	return pairs, nil
}

func (r *ProfileRepositoryImpl) countByState(ctx context.Context, agencyID uint, broken, archived bool, countryID, cityID *uint) (int64, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Profile{}).
		Where("profiles.agency_id = ?", agencyID).
		Where("profiles.is_broken = ?", broken).
		Where("profiles.is_archived = ?", archived)

	if countryID != nil || cityID != nil {
		query = query.
			Joins("LEFT JOIN cities ON cities.id = profiles.city_id").
			Joins("LEFT JOIN countries ON countries.id = cities.countries_id")
	}
	if countryID != nil {
		query = query.Where("countries.id = ?", *countryID)
	}
	if cityID != nil {
		query = query.Where("cities.id = ?", *cityID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return count, nil
}

// CountEligible counts the non-broken, non-archived profiles of an agency,
// optionally narrowed by country or city.
func (r *ProfileRepositoryImpl) CountEligible(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error) {
	return r.countByState(ctx, agencyID, false, false, countryID, cityID)
}

// CountBroken counts broken, non-archived profiles of an agency
func (r *ProfileRepositoryImpl) CountBroken(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error) {
	return r.countByState(ctx, agencyID, true, false, countryID, cityID)
}

// CountArchived counts archived, non-broken profiles of an agency
func (r *ProfileRepositoryImpl) CountArchived(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error) {
	return r.countByState(ctx, agencyID, false, true, countryID, cityID)
}

// MinimalIncallPrice returns the lowest meaningful incall hour price of an
// agency, or nil if no profile carries one.
func (r *ProfileRepositoryImpl) MinimalIncallPrice(ctx context.Context, agencyID uint) (*int, error) {
	db := r.getDB(ctx)

	var profile models.Profile
	err := db.Where("agency_id = ?", agencyID).
		Where("price_hour_incall IS NOT NULL").
		Where("price_hour_incall > ?", 10).
		Order("price_hour_incall ASC").
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find minimal incall price: %w", err)
	}

	return profile.PriceHourIncall, nil
}

// DeleteByAgency removes all profiles belonging to an agency
func (r *ProfileRepositoryImpl) DeleteByAgency(ctx context.Context, agencyID uint) error {
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

	err = db.Where("agency_id = ?", agencyID).Delete(&models.Profile{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete profiles of agency %d: %w", agencyID, err)
	}

	return nil
}
