// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
)

// CountryRepositoryImpl implements the read-only CountryRepository interface
type CountryRepositoryImpl struct {
	db *gorm.DB
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *gorm.DB) CountryRepository {
	return &CountryRepositoryImpl{db: db}
}

func (r *CountryRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// ByID retrieves a country by id
func (r *CountryRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Country, error) {
	db := r.getDB(ctx)

	var country models.Country
	err := db.First(&country, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find country %d: %w", id, err)
	}

	return &country, nil
}

// ByCode retrieves a country by its two-letter code
func (r *CountryRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Country, error) {
	db := r.getDB(ctx)

	var country models.Country
	err := db.Where("code = ?", code).First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find country by code %s: %w", code, err)
	}

	return &country, nil
}
