// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
)

// CityRepositoryImpl implements the read-only CityRepository interface
type CityRepositoryImpl struct {
	db *gorm.DB
}

// NewCityRepository creates a new city repository
func NewCityRepository(db *gorm.DB) CityRepository {
	return &CityRepositoryImpl{db: db}
}

func (r *CityRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// ByID retrieves a city by id
func (r *CityRepositoryImpl) ByID(ctx context.Context, id uint) (*models.City, error) {
	db := r.getDB(ctx)

	var city models.City
	err := db.First(&city, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find city %d: %w", id, err)
	}

	return &city, nil
}

// ByIDWithCountry retrieves a city with its country preloaded; the rebuild
// flow needs both published flags in one read.
func (r *CityRepositoryImpl) ByIDWithCountry(ctx context.Context, id uint) (*models.City, error) {
	db := r.getDB(ctx)

	var city models.City
	err := db.Preload("Country").First(&city, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find city %d with country: %w", id, err)
	}

	return &city, nil
}
