// Package businessflow contains the core business logic and use cases for the listing search
package businessflow

import (
	"context"

	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	"github.com/mostovoy/agency-directory/utils"
)

// AgencySearchFlow defines the listing search use case
type AgencySearchFlow interface {
	ListAgencies(ctx context.Context, req *dto.AgencySearchRequest) (*dto.AgencyListResponse, error)
}

// AgencySearchFlowImpl implements AgencySearchFlow
type AgencySearchFlowImpl struct {
	agencyRepo repository.AgencyRepository
}

// NewAgencySearchFlow constructs an AgencySearchFlow
func NewAgencySearchFlow(agencyRepo repository.AgencyRepository) AgencySearchFlow {
	return &AgencySearchFlowImpl{agencyRepo: agencyRepo}
}

// ListAgencies composes the filter set from the request, runs the listing
// query, and returns one page plus the distinct total.
func (s *AgencySearchFlowImpl) ListAgencies(ctx context.Context, req *dto.AgencySearchRequest) (*dto.AgencyListResponse, error) {
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = utils.DefaultPageSize
	}
	if pageSize < 0 {
		return nil, NewBusinessError("LIST_AGENCIES_VALIDATION_FAILED", "Page size must be greater than zero", models.ErrInvalidPageSize)
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	params := req.ToSearchParams()
	result, err := s.agencyRepo.Search(ctx, params, pageSize, page)
	if err != nil {
		return nil, NewBusinessError("LIST_AGENCIES_FAILED", "Failed to run listing query", err)
	}

	last, err := models.IsLastPage(result.Total, pageSize, page)
	if err != nil {
		return nil, NewBusinessError("LIST_AGENCIES_FAILED", "Failed to compute pagination", err)
	}

	agencies := make([]dto.AgencyDTO, 0, len(result.Agencies))
	for _, a := range result.Agencies {
		agencies = append(agencies, dto.ToAgencyDTO(*a))
	}

	return &dto.AgencyListResponse{
		Message:    "Agencies retrieved",
		Agencies:   agencies,
		Total:      result.Total,
		Page:       page,
		PageSize:   pageSize,
		IsLastPage: last,
	}, nil
}
