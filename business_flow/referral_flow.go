// Package businessflow contains the core business logic and use cases for referral scoring
package businessflow

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	"github.com/mostovoy/agency-directory/utils"
)

// siteKeyPattern permissively extracts a site key from a source-URL-like
// referral field: the first run of alphanumerics, dots, and dashes.
var siteKeyPattern = regexp.MustCompile(`(?i)[a-z0-9.-]+`)

// ReferralFlow converts raw referral counts into bounded promotional
// probability weights.
type ReferralFlow interface {
	// CountReferrals accumulates visit counts per extracted site key.
	CountReferrals(rows []dto.ReferralRow) map[string]int64

	// AssignProbabilities computes probability = ceil(MaxProbability /
	// (max/count)) for every key resolving to a known agency, flags the
	// agency promotional, and persists it. The maximum is taken over
	// resolvable keys only; when nothing resolves the run is a clean no-op
	// with an empty report.
	AssignProbabilities(ctx context.Context, counts map[string]int64) (*dto.ReferralReport, error)

	// Score is the one-shot batch: count then assign.
	Score(ctx context.Context, rows []dto.ReferralRow) (*dto.ReferralReport, error)
}

// ReferralFlowImpl implements ReferralFlow
type ReferralFlowImpl struct {
	agencyRepo repository.AgencyRepository
}

// NewReferralFlow constructs a ReferralFlow
func NewReferralFlow(agencyRepo repository.AgencyRepository) ReferralFlow {
	return &ReferralFlowImpl{agencyRepo: agencyRepo}
}

func (f *ReferralFlowImpl) CountReferrals(rows []dto.ReferralRow) map[string]int64 {
	counts := make(map[string]int64)
	for _, row := range rows {
		key := siteKeyPattern.FindString(row.Source)
		if key == "" {
			continue
		}
		counts[key] += row.Visitors
	}
	return counts
}

func (f *ReferralFlowImpl) AssignProbabilities(ctx context.Context, counts map[string]int64) (*dto.ReferralReport, error) {
	report := &dto.ReferralReport{Message: "Referral probabilities assigned"}

	// Deterministic processing order for a stable status report.
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// First pass: resolve keys and find the maximum among resolvable ones.
	// Unresolvable keys must not influence the denominator.
	resolved := make(map[string]*models.Agency, len(keys))
	var maxCount int64
	for _, key := range keys {
		agency, err := f.agencyRepo.ByWebsiteDisregardHost(ctx, key)
		if err != nil {
			return nil, NewBusinessError("SCORE_REFERRALS_FAILED", "Failed to resolve referral site", err)
		}
		if agency == nil {
			continue
		}
		resolved[key] = agency
		if counts[key] > maxCount {
			maxCount = counts[key]
		}
	}

	// The maximum of an empty resolvable set is undefined; short-circuit
	// before any division.
	if len(resolved) == 0 || maxCount <= 0 {
		report.Message = "No referral resolved to a known agency"
		return report, nil
	}

	for _, key := range keys {
		agency, ok := resolved[key]
		if !ok {
			continue
		}
		count := counts[key]
		// A non-positive count carries no weight and must not produce a
		// negative probability.
		if count <= 0 {
			continue
		}

		probability := int(math.Ceil(float64(utils.MaxProbability) / (float64(maxCount) / float64(count))))
		if probability > utils.MaxProbability {
			probability = utils.MaxProbability
		}

		agency.Probability = probability
		agency.IsPromo = utils.ToPtr(true)
		if err := f.agencyRepo.Update(ctx, agency); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("error set probability %s: %v", key, err))
			continue
		}
		report.Success = append(report.Success, fmt.Sprintf("%s countReferral %d probability %d", key, count, probability))
	}

	return report, nil
}

func (f *ReferralFlowImpl) Score(ctx context.Context, rows []dto.ReferralRow) (*dto.ReferralReport, error) {
	return f.AssignProbabilities(ctx, f.CountReferrals(rows))
}
