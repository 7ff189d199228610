// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
)

const RequestIDKey = "X-Request-ID"

// Cache keys for the directory lookups; both live under the agency
// collection tag, so any agency write clears them together.
const (
	visibleAgenciesCacheKey = "agencies:visible-by-name"
	idNameMapCacheKey       = "agencies:visible-id-name"
)

// getAgency loads an agency or maps the missing row to the not-found sentinel
func getAgency(ctx context.Context, repo repository.AgencyRepository, id uint) (*models.Agency, error) {
	if id == 0 {
		return nil, NewBusinessError("AGENCY_ID_REQUIRED", "Agency id must be greater than 0", ErrAgencyIDRequired)
	}

	agency, err := repo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("AGENCY_LOOKUP_FAILED", "Failed to load agency", err)
	}
	if agency == nil {
		return nil, NewBusinessError("AGENCY_NOT_FOUND", "Agency not found", ErrAgencyNotFound)
	}

	return agency, nil
}
