// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/mostovoy/agency-directory/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
}

// SearchResult is one page of a listing query plus the distinct total.
type SearchResult struct {
	Agencies []*models.Agency
	Total    int64
}

// AgencyRepository defines operations for directory agencies
type AgencyRepository interface {
	Repository[models.Agency, models.AgencyFilter]

	// Search runs the composed listing query: base visibility predicate,
	// caller predicates, ordering, and a 1-indexed page window.
	Search(ctx context.Context, params models.AgencySearchParams, pageSize, page int) (*SearchResult, error)

	ActiveByName(ctx context.Context, name string) (*models.Agency, error)
	ByWebsite(ctx context.Context, website string) (*models.Agency, error)
	ByWebsiteContains(ctx context.Context, website string) (*models.Agency, error)
	ByWebsiteDisregardHost(ctx context.Context, website string) (*models.Agency, error)
	ByNameExcept(ctx context.Context, name string, exceptID uint) (*models.Agency, error)

	ListVisibleSortedByName(ctx context.Context) ([]*models.Agency, error)
	ListByPromotion(ctx context.Context, promo bool) ([]*models.Agency, error)
	IDNameSelect(ctx context.Context, cityID, countryID *uint) ([]models.AgencyIDName, error)
	NotVisibleIDs(ctx context.Context) ([]uint, error)

	CountNonApplicant(ctx context.Context) (int64, error)
	CountApplicants(ctx context.Context, approved bool) (int64, error)

	// Delete removes the agency together with its profiles and view-count
	// rows in one transaction.
	Delete(ctx context.Context, id uint) error
}

// ProfileRepository defines operations for listed profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]

	// DistinctCityPairs snapshots the distinct eligible (city, agency)
	// pairs for one agency; pairs with an absent city or agency are skipped.
	DistinctCityPairs(ctx context.Context, agencyID uint) ([]models.AgencyCityPair, error)

	CountEligible(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error)
	CountBroken(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error)
	CountArchived(ctx context.Context, agencyID uint, countryID, cityID *uint) (int64, error)
	MinimalIncallPrice(ctx context.Context, agencyID uint) (*int, error)
	DeleteByAgency(ctx context.Context, agencyID uint) error
}

// CityRepository defines read-only operations for cities
type CityRepository interface {
	ByID(ctx context.Context, id uint) (*models.City, error)
	ByIDWithCountry(ctx context.Context, id uint) (*models.City, error)
}

// CountryRepository defines read-only operations for countries
type CountryRepository interface {
	ByID(ctx context.Context, id uint) (*models.Country, error)
	ByCode(ctx context.Context, code string) (*models.Country, error)
}

// AgencyCityRepository defines operations for the materialized relation
type AgencyCityRepository interface {
	Repository[models.AgencyCity, models.AgencyCityFilter]
	SaveIgnoreDuplicates(ctx context.Context, link *models.AgencyCity) error
	ListByAgency(ctx context.Context, agencyID uint) ([]*models.AgencyCity, error)
	DeleteByAgency(ctx context.Context, agencyID uint) error
}

// ProfileViewRepository defines operations for view-count events
type ProfileViewRepository interface {
	Repository[models.ProfileView, models.ProfileViewFilter]
	CountByAgency(ctx context.Context, agencyID uint) (int64, error)
	DeleteByAgency(ctx context.Context, agencyID uint) error
}
