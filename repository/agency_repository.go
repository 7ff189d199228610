// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mostovoy/agency-directory/models"
	"gorm.io/gorm"
)

// viewsCountSelect annotates each row with the profile-view aggregate used by
// the "popular" ordering; it is computed inside the listing query, never
// precomputed.
const viewsCountSelect = "agencies.*, (SELECT count(*) FROM profile_views WHERE profile_views.agency_id = agencies.id) AS views_count"

// eligibleProfileExists is the base predicate: agencies without at least one
// non-broken, non-archived profile never appear in listings.
const eligibleProfileExists = "(SELECT count(*) FROM profiles WHERE profiles.agency_id = agencies.id AND profiles.is_broken = false AND profiles.is_archived = false) > 0"

// AgencyRepositoryImpl implements AgencyRepository interface
type AgencyRepositoryImpl struct {
	*BaseRepository[models.Agency, models.AgencyFilter]
}

// NewAgencyRepository creates a new agency repository
func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &AgencyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Agency, models.AgencyFilter](db),
	}
}

// applyPredicates renders composed fragments into the GORM query. Contains
// matches are case-insensitive (ILIKE on Postgres).
func applyPredicates(db *gorm.DB, predicates []models.SearchPredicate) *gorm.DB {
	for _, p := range predicates {
		switch p.Op {
		case models.OpEqual:
			db = db.Where(fmt.Sprintf("%s = ?", p.Column), p.Value)
		case models.OpNotEqual:
			db = db.Where(fmt.Sprintf("%s <> ?", p.Column), p.Value)
		case models.OpContains:
			db = db.Where(fmt.Sprintf("%s ILIKE ?", p.Column), containsPattern(p.Value))
		case models.OpContainsEither:
			db = db.Where(fmt.Sprintf("(%s ILIKE ? OR %s ILIKE ?)", p.Column, p.OrColumn),
				containsPattern(p.Value), containsPattern(p.Value))
		}
	}
	return db
}

func containsPattern(v any) string {
	return "%" + escapeLike(fmt.Sprintf("%v", v)) + "%"
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func orderClause(o models.Ordering) string {
	switch o {
	case models.OrderByName:
		return "agencies.name ASC"
	case models.OrderByPopular:
		return "views_count DESC"
	default:
		return "agencies.web_verified DESC, agencies.weight DESC"
	}
}

// Search runs the full listing query: base predicates, composed filters,
// location joins when needed, distinct total, ordering, 1-indexed paging.
func (r *AgencyRepositoryImpl) Search(ctx context.Context, params models.AgencySearchParams, pageSize, page int) (*SearchResult, error) {
	if pageSize <= 0 {
		return nil, models.ErrInvalidPageSize
	}
	if page <= 0 {
		page = 1
	}

	db := r.getDB(ctx)
	predicates := params.Compose()
	ordering := models.ResolveOrdering(params.Sort)

	base := db.Model(&models.Agency{}).
		Where("agencies.visible = ?", true).
		Where(eligibleProfileExists)

	// Joins fan rows out per city; both the count and the page must be
	// distinct by agency identity.
	if models.NeedsLocationJoin(predicates) {
		base = base.
			Joins("LEFT JOIN agency_cities ON agency_cities.agency_id = agencies.id").
			Joins("LEFT JOIN cities ON cities.id = agency_cities.city_id").
			Joins("LEFT JOIN countries ON countries.id = cities.countries_id")
	}

	base = applyPredicates(base, predicates)

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("agencies.id").Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count listing query: %w", err)
	}

	var agencies []*models.Agency
	err := base.Session(&gorm.Session{}).
		Select(viewsCountSelect).
		Distinct().
		Order(orderClause(ordering)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&agencies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to run listing query: %w", err)
	}

	return &SearchResult{Agencies: agencies, Total: total}, nil
}

// ActiveByName retrieves a visible agency by its display name with dashes
// folded to spaces, the inverse of the page-key slug. Page keys are
// lowercase, so the match ignores case.
func (r *AgencyRepositoryImpl) ActiveByName(ctx context.Context, name string) (*models.Agency, error) {
	db := r.getDB(ctx)
	name = strings.ReplaceAll(name, "-", " ")

	var agency models.Agency
	err := db.Where("REPLACE(name, '-', ' ') ILIKE ?", escapeLike(name)).
		Where("visible = ?", true).
		First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active agency by name: %w", err)
	}

	return &agency, nil
}

// ByWebsite retrieves an agency by exact website match
func (r *AgencyRepositoryImpl) ByWebsite(ctx context.Context, website string) (*models.Agency, error) {
	db := r.getDB(ctx)

	var agency models.Agency
	err := db.Where("website = ?", website).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agency by website: %w", err)
	}

	return &agency, nil
}

// ByWebsiteContains retrieves an agency whose website contains the fragment
func (r *AgencyRepositoryImpl) ByWebsiteContains(ctx context.Context, website string) (*models.Agency, error) {
	db := r.getDB(ctx)

	var agency models.Agency
	err := db.Where("website ILIKE ?", containsPattern(website)).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agency by website fragment: %w", err)
	}

	return &agency, nil
}

// ByWebsiteDisregardHost resolves a referral site key to an agency: scheme,
// www prefix, slashes, and quotes are stripped before a containment match on
// the stored website. This is the scorer's lookup.
func (r *AgencyRepositoryImpl) ByWebsiteDisregardHost(ctx context.Context, website string) (*models.Agency, error) {
	site := website
	for _, junk := range []string{"http://", "https://", "www.", "/", "'"} {
		site = strings.ReplaceAll(site, junk, "")
	}
	if site == "" {
		return nil, nil
	}

	db := r.getDB(ctx)

	var agency models.Agency
	err := db.Where("REPLACE(website, '/', ' ') ILIKE ?", containsPattern(site)).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agency by site key: %w", err)
	}

	return &agency, nil
}

// ByNameExcept retrieves an agency with the given name and a different id;
// used for uniqueness checks before renames.
func (r *AgencyRepositoryImpl) ByNameExcept(ctx context.Context, name string, exceptID uint) (*models.Agency, error) {
	db := r.getDB(ctx)

	var agency models.Agency
	err := db.Where("name = ?", name).Where("id <> ?", exceptID).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find agency by name except %d: %w", exceptID, err)
	}

	return &agency, nil
}

// ListVisibleSortedByName is the whole-table read behind the directory cache
func (r *AgencyRepositoryImpl) ListVisibleSortedByName(ctx context.Context) ([]*models.Agency, error) {
	db := r.getDB(ctx)

	var agencies []*models.Agency
	err := db.Where("visible = ?", true).Order("name ASC").Find(&agencies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list visible agencies: %w", err)
	}

	return agencies, nil
}

// ListByPromotion retrieves agencies by promo flag
func (r *AgencyRepositoryImpl) ListByPromotion(ctx context.Context, promo bool) ([]*models.Agency, error) {
	db := r.getDB(ctx)

	var agencies []*models.Agency
	err := db.Where("is_promo = ?", promo).Find(&agencies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies by promotion: %w", err)
	}

	return agencies, nil
}

// IDNameSelect returns the ordered id/name projection for selection widgets,
// optionally narrowed by city or country through the materialized relation.
func (r *AgencyRepositoryImpl) IDNameSelect(ctx context.Context, cityID, countryID *uint) ([]models.AgencyIDName, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Agency{}).Select("agencies.id, agencies.name")

	// The city narrowing wins over the country one when both are given.
	if cityID != nil || countryID != nil {
		query = query.Joins("LEFT JOIN agency_cities ON agency_cities.agency_id = agencies.id")
		if cityID != nil {
			query = query.Where("agency_cities.city_id = ?", *cityID)
		} else {
			query = query.
				Joins("LEFT JOIN cities ON cities.id = agency_cities.city_id").
				Where("cities.countries_id = ?", *countryID)
		}
		query = query.Distinct()
	}

	var rows []models.AgencyIDName
	err := query.Order("agencies.name ASC").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select agency id/name pairs: %w", err)
	}

	return rows, nil
}

// NotVisibleIDs returns the ids of all hidden agencies
func (r *AgencyRepositoryImpl) NotVisibleIDs(ctx context.Context) ([]uint, error) {
	db := r.getDB(ctx)

	var ids []uint
	err := db.Model(&models.Agency{}).Where("visible = ?", false).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hidden agency ids: %w", err)
	}

	return ids, nil
}

// CountNonApplicant counts the established (non-applicant) agencies
func (r *AgencyRepositoryImpl) CountNonApplicant(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Agency{}).Where("applicant = ?", false).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count non-applicant agencies: %w", err)
	}

	return count, nil
}

// CountApplicants counts applicant agencies by approval state
func (r *AgencyRepositoryImpl) CountApplicants(ctx context.Context, approved bool) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Agency{}).
		Where("applicant = ?", true).
		Where("approved = ?", approved).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applicant agencies: %w", err)
	}

	return count, nil
}

// Delete removes the agency and cascades to its profiles and view-count rows
func (r *AgencyRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	if err = db.Where("agency_id = ?", id).Delete(&models.ProfileView{}).Error; err != nil {
		return fmt.Errorf("failed to delete agency view counts: %w", err)
	}
	if err = db.Where("agency_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("failed to delete agency profiles: %w", err)
	}
	if err = db.Where("agency_id = ?", id).Delete(&models.AgencyCity{}).Error; err != nil {
		return fmt.Errorf("failed to delete agency city links: %w", err)
	}
	if err = db.Delete(&models.Agency{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete agency %d: %w", id, err)
	}

	return nil
}
