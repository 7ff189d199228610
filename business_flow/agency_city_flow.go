// Package businessflow contains the core business logic and use cases for relation materialization
package businessflow

import (
	"context"
	"fmt"

	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	"github.com/mostovoy/agency-directory/utils"
	"gorm.io/gorm"
)

// AgencyCityFlow rebuilds the materialized agency-city relation
type AgencyCityFlow interface {
	// RebuildAgencyCities replaces the association set of one agency with
	// the pairs passing the eligibility cascade as of the profile snapshot.
	// Idempotent: a second run with unchanged data yields the same set.
	RebuildAgencyCities(ctx context.Context, agencyID uint) (*dto.RebuildReport, error)
}

// AgencyCityFlowImpl implements AgencyCityFlow
type AgencyCityFlowImpl struct {
	agencyRepo     repository.AgencyRepository
	profileRepo    repository.ProfileRepository
	cityRepo       repository.CityRepository
	agencyCityRepo repository.AgencyCityRepository
	db             *gorm.DB
}

// NewAgencyCityFlow constructs an AgencyCityFlow
func NewAgencyCityFlow(
	agencyRepo repository.AgencyRepository,
	profileRepo repository.ProfileRepository,
	cityRepo repository.CityRepository,
	agencyCityRepo repository.AgencyCityRepository,
	db *gorm.DB,
) AgencyCityFlow {
	return &AgencyCityFlowImpl{
		agencyRepo:     agencyRepo,
		profileRepo:    profileRepo,
		cityRepo:       cityRepo,
		agencyCityRepo: agencyCityRepo,
		db:             db,
	}
}

// RebuildAgencyCities runs the three steps of the materializer:
//  1. snapshot distinct eligible (city, agency) pairs from profiles,
//  2. discard the prior association set unconditionally,
//  3. reinsert each pair that passes the visibility cascade
//     (agency visible, city published, country published).
//
// Delete and reinsert share one transaction, so no reader observes an
// empty-then-partial window. A pair failing the cascade is skipped silently;
// a pair failing to insert is reported but does not abort the others.
func (f *AgencyCityFlowImpl) RebuildAgencyCities(ctx context.Context, agencyID uint) (*dto.RebuildReport, error) {
	agency, err := getAgency(ctx, f.agencyRepo, agencyID)
	if err != nil {
		return nil, err
	}

	pairs, err := f.profileRepo.DistinctCityPairs(ctx, agencyID)
	if err != nil {
		return nil, NewBusinessError("REBUILD_AGENCY_CITIES_FAILED", "Failed to snapshot city pairs", err)
	}

	report := &dto.RebuildReport{
		Message:   "Agency cities rebuilt",
		AgencyID:  agencyID,
		PairCount: len(pairs),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.agencyCityRepo.DeleteByAgency(txCtx, agencyID); err != nil {
			return err
		}

		for _, pair := range pairs {
			eligible, reason, err := f.pairEligible(txCtx, agency, pair)
			if err != nil {
				return err
			}
			if !eligible {
				report.Skipped = append(report.Skipped, fmt.Sprintf("city %d: %s", pair.CityID, reason))
				continue
			}

			link := &models.AgencyCity{AgencyID: pair.AgencyID, CityID: pair.CityID}
			if err := f.agencyCityRepo.SaveIgnoreDuplicates(txCtx, link); err != nil {
				report.Failed = append(report.Failed, fmt.Sprintf("city %d: %v", pair.CityID, err))
				continue
			}
			report.Inserted = append(report.Inserted, fmt.Sprintf("city %d", pair.CityID))
		}

		return nil
	})
	if err != nil {
		return nil, NewBusinessError("REBUILD_AGENCY_CITIES_FAILED", "Failed to rebuild agency cities", err)
	}

	return report, nil
}

// pairEligible applies the three-way visibility cascade to one snapshot pair
func (f *AgencyCityFlowImpl) pairEligible(ctx context.Context, agency *models.Agency, pair models.AgencyCityPair) (bool, string, error) {
	if !utils.IsTrue(agency.Visible) {
		return false, "agency not visible", nil
	}

	city, err := f.cityRepo.ByIDWithCountry(ctx, pair.CityID)
	if err != nil {
		return false, "", err
	}
	if city == nil {
		return false, "city not found", nil
	}
	if !utils.IsTrue(city.Published) {
		return false, "city not published", nil
	}
	if city.Country == nil || !utils.IsTrue(city.Country.Published) {
		return false, "country not published", nil
	}

	return true, "", nil
}
