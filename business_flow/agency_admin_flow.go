// Package businessflow contains the core business logic and use cases for agency administration
package businessflow

import (
	"context"

	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/cache"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	"github.com/mostovoy/agency-directory/utils"
	"gorm.io/gorm"
)

// AgencyAdminFlow defines the agency write path. Every successful write
// invalidates the agency collection tag so the cached directory reads
// recompute on their next call.
type AgencyAdminFlow interface {
	CreateAgency(ctx context.Context, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error)
	UpdateAgency(ctx context.Context, id uint, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error)
	DeleteAgency(ctx context.Context, id uint) error
	GetAgency(ctx context.Context, id uint) (*dto.AgencyResponse, error)
	SelectAgencies(ctx context.Context, cityID, countryID *uint) (*dto.AgencySelectResponse, error)
}

// AgencyAdminFlowImpl implements AgencyAdminFlow
type AgencyAdminFlowImpl struct {
	agencyRepo repository.AgencyRepository
	cache      *cache.TaggedCache
	db         *gorm.DB
}

// NewAgencyAdminFlow constructs an AgencyAdminFlow
func NewAgencyAdminFlow(agencyRepo repository.AgencyRepository, c *cache.TaggedCache, db *gorm.DB) AgencyAdminFlow {
	return &AgencyAdminFlowImpl{agencyRepo: agencyRepo, cache: c, db: db}
}

// invalidate clears the cached directory reads; fire-and-forget, a failed
// invalidation only delays freshness until the next write.
func (a *AgencyAdminFlowImpl) invalidate(ctx context.Context) {
	if a.cache != nil {
		_ = a.cache.InvalidateTag(ctx, models.Agency{}.CacheTag())
	}
}

func (a *AgencyAdminFlowImpl) CreateAgency(ctx context.Context, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error) {
	if req.Name == "" {
		return nil, NewBusinessError("CREATE_AGENCY_VALIDATION_FAILED", "Name is required", ErrAgencyNameRequired)
	}

	existing, err := a.agencyRepo.ByNameExcept(ctx, req.Name, 0)
	if err != nil {
		return nil, NewBusinessError("CREATE_AGENCY_FAILED", "Failed to check name uniqueness", err)
	}
	if existing != nil {
		return nil, NewBusinessError("CREATE_AGENCY_VALIDATION_FAILED", "Agency name is already taken", ErrAgencyNameTaken)
	}

	agency := &models.Agency{
		Name:        req.Name,
		Website:     req.Website,
		Phone:       req.Phone,
		Email:       req.Email,
		Info:        req.Info,
		AgencyPage:  req.AgencyPage,
		Visible:     req.Visible,
		IsPartner:   req.IsPartner,
		Applicant:   req.Applicant,
		Approved:    req.Approved,
		Weight:      req.Weight,
		WebVerified: req.WebVerified,
	}
	if err := a.agencyRepo.Save(ctx, agency); err != nil {
		return nil, NewBusinessError("CREATE_AGENCY_FAILED", "Failed to save agency", err)
	}

	a.invalidate(ctx)

	return &dto.AgencyResponse{
		Message: "Agency created successfully",
		Agency:  dto.ToAgencyDTO(*agency),
	}, nil
}

func (a *AgencyAdminFlowImpl) UpdateAgency(ctx context.Context, id uint, req *dto.CreateAgencyRequest) (*dto.AgencyResponse, error) {
	agency, err := getAgency(ctx, a.agencyRepo, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && req.Name != agency.Name {
		taken, err := a.agencyRepo.ByNameExcept(ctx, req.Name, id)
		if err != nil {
			return nil, NewBusinessError("UPDATE_AGENCY_FAILED", "Failed to check name uniqueness", err)
		}
		if taken != nil {
			return nil, NewBusinessError("UPDATE_AGENCY_VALIDATION_FAILED", "Agency name is already taken", ErrAgencyNameTaken)
		}
		agency.Name = req.Name
	}

	agency.Website = req.Website
	agency.Phone = req.Phone
	agency.Email = req.Email
	agency.Info = req.Info
	if req.AgencyPage != "" {
		agency.AgencyPage = req.AgencyPage
	}
	if req.Visible != nil {
		agency.Visible = req.Visible
	}
	if req.IsPartner != nil {
		agency.IsPartner = req.IsPartner
	}
	if req.Applicant != nil {
		agency.Applicant = req.Applicant
	}
	if req.Approved != nil {
		agency.Approved = req.Approved
	}
	if req.WebVerified != nil {
		agency.WebVerified = req.WebVerified
	}
	agency.Weight = req.Weight
	agency.UpdatedAt = utils.UTCNow()

	if err := a.agencyRepo.Update(ctx, agency); err != nil {
		return nil, NewBusinessError("UPDATE_AGENCY_FAILED", "Failed to update agency", err)
	}

	a.invalidate(ctx)

	return &dto.AgencyResponse{
		Message: "Agency updated successfully",
		Agency:  dto.ToAgencyDTO(*agency),
	}, nil
}

// DeleteAgency removes the agency with its profiles and view counts, then
// invalidates the directory cache.
func (a *AgencyAdminFlowImpl) DeleteAgency(ctx context.Context, id uint) error {
	if _, err := getAgency(ctx, a.agencyRepo, id); err != nil {
		return err
	}

	err := repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		return a.agencyRepo.Delete(txCtx, id)
	})
	if err != nil {
		return NewBusinessError("DELETE_AGENCY_FAILED", "Failed to delete agency", err)
	}

	a.invalidate(ctx)
	return nil
}

func (a *AgencyAdminFlowImpl) GetAgency(ctx context.Context, id uint) (*dto.AgencyResponse, error) {
	agency, err := getAgency(ctx, a.agencyRepo, id)
	if err != nil {
		return nil, err
	}

	return &dto.AgencyResponse{
		Message: "Agency retrieved",
		Agency:  dto.ToAgencyDTO(*agency),
	}, nil
}

// SelectAgencies returns the ordered id/name projection, optionally narrowed
// by city or country through the materialized relation.
func (a *AgencyAdminFlowImpl) SelectAgencies(ctx context.Context, cityID, countryID *uint) (*dto.AgencySelectResponse, error) {
	rows, err := a.agencyRepo.IDNameSelect(ctx, cityID, countryID)
	if err != nil {
		return nil, NewBusinessError("SELECT_AGENCIES_FAILED", "Failed to select agencies", err)
	}

	pairs := make([]dto.IDNamePair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, dto.IDNamePair{ID: row.ID, Name: row.Name})
	}

	return &dto.AgencySelectResponse{
		Message:  "Agencies retrieved",
		Agencies: pairs,
	}, nil
}
