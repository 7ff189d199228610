// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
)

// ProfileViewRepositoryImpl implements ProfileViewRepository interface
type ProfileViewRepositoryImpl struct {
	*BaseRepository[models.ProfileView, models.ProfileViewFilter]
}

// NewProfileViewRepository creates a new profile-view repository
func NewProfileViewRepository(db *gorm.DB) ProfileViewRepository {
	return &ProfileViewRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ProfileView, models.ProfileViewFilter](db),
	}
}

// CountByAgency counts view events for one agency
func (r *ProfileViewRepositoryImpl) CountByAgency(ctx context.Context, agencyID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.ProfileView{}).Where("agency_id = ?", agencyID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count views of agency %d: %w", agencyID, err)
	}

	return count, nil
}

// DeleteByAgency removes all view events of an agency (delete cascade)
func (r *ProfileViewRepositoryImpl) DeleteByAgency(ctx context.Context, agencyID uint) error {
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

	err = db.Where("agency_id = ?", agencyID).Delete(&models.ProfileView{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete views of agency %d: %w", agencyID, err)
	}

	return nil
}
