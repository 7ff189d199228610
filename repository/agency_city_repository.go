// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgencyCityRepositoryImpl implements AgencyCityRepository interface
type AgencyCityRepositoryImpl struct {
	*BaseRepository[models.AgencyCity, models.AgencyCityFilter]
}

// NewAgencyCityRepository creates a new agency-city repository
func NewAgencyCityRepository(db *gorm.DB) AgencyCityRepository {
	return &AgencyCityRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AgencyCity, models.AgencyCityFilter](db),
	}
}

// SaveIgnoreDuplicates inserts an association row, treating a unique-pair
// conflict as a no-op so one duplicate cannot poison the surrounding rebuild
// transaction.
func (r *AgencyCityRepositoryImpl) SaveIgnoreDuplicates(ctx context.Context, link *models.AgencyCity) error {
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

	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
	if err != nil {
		return fmt.Errorf("failed to save agency city link: %w", err)
	}

	return nil
}

// ListByAgency retrieves the current association rows of an agency
func (r *AgencyCityRepositoryImpl) ListByAgency(ctx context.Context, agencyID uint) ([]*models.AgencyCity, error) {
	db := r.getDB(ctx)

	var links []*models.AgencyCity
	err := db.Where("agency_id = ?", agencyID).Order("city_id ASC").Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list agency city links: %w", err)
	}

	return links, nil
}

// DeleteByAgency discards the whole association set of an agency; the rebuild
// flow always calls this before reinserting, even when nothing will follow.
func (r *AgencyCityRepositoryImpl) DeleteByAgency(ctx context.Context, agencyID uint) error {
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

	err = db.Where("agency_id = ?", agencyID).Delete(&models.AgencyCity{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete city links of agency %d: %w", agencyID, err)
	}

	return nil
}
