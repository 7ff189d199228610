// Package businessflow contains the core business logic and use cases for cached directory reads
package businessflow

import (
	"context"

	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/cache"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
)

// DirectoryFlow defines the cached whole-table directory lookups
type DirectoryFlow interface {
	// ListVisibleSortedByName returns every visible agency ordered by name.
	ListVisibleSortedByName(ctx context.Context) ([]dto.AgencyDTO, error)

	// VisibleIDNameMap returns the same set as an ordered id/name
	// projection for selection widgets.
	VisibleIDNameMap(ctx context.Context) ([]dto.IDNamePair, error)
}

// DirectoryFlowImpl implements DirectoryFlow as a read-through decorator:
// reads hit the cache first, misses recompute from storage and publish under
// the agency collection tag.
type DirectoryFlowImpl struct {
	agencyRepo repository.AgencyRepository
	cache      *cache.TaggedCache
}

// NewDirectoryFlow constructs a DirectoryFlow
func NewDirectoryFlow(agencyRepo repository.AgencyRepository, c *cache.TaggedCache) DirectoryFlow {
	return &DirectoryFlowImpl{agencyRepo: agencyRepo, cache: c}
}

func (s *DirectoryFlowImpl) ListVisibleSortedByName(ctx context.Context) ([]dto.AgencyDTO, error) {
	if s.cache != nil {
		var cached []dto.AgencyDTO
		if hit, err := s.cache.Get(ctx, visibleAgenciesCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	agencies, err := s.agencyRepo.ListVisibleSortedByName(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_VISIBLE_AGENCIES_FAILED", "Failed to list visible agencies", err)
	}

	out := make([]dto.AgencyDTO, 0, len(agencies))
	for _, a := range agencies {
		out = append(out, dto.ToAgencyDTO(*a))
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, visibleAgenciesCacheKey, out, models.Agency{}.CacheTag())
	}

	return out, nil
}

func (s *DirectoryFlowImpl) VisibleIDNameMap(ctx context.Context) ([]dto.IDNamePair, error) {
	if s.cache != nil {
		var cached []dto.IDNamePair
		if hit, err := s.cache.Get(ctx, idNameMapCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	agencies, err := s.agencyRepo.ListVisibleSortedByName(ctx)
	if err != nil {
		return nil, NewBusinessError("AGENCY_ID_NAME_MAP_FAILED", "Failed to build agency id/name map", err)
	}

	out := make([]dto.IDNamePair, 0, len(agencies))
	for _, a := range agencies {
		out = append(out, dto.IDNamePair{ID: a.ID, Name: a.Name})
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, idNameMapCacheKey, out, models.Agency{}.CacheTag())
	}

	return out, nil
}
