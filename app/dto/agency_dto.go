package dto

import (
	"time"

	"github.com/mostovoy/agency-directory/models"
)

// AgencySearchRequest is the flat query shape of the listing search. Legacy
// mirrors the nested AgencySearch form shape still submitted by old admin
// screens.
type AgencySearchRequest struct {
	AgencyName *string `query:"agencyName" json:"agencyName,omitempty"`
	Name       *string `query:"name" json:"name,omitempty"`
	Website    *string `query:"website" json:"website,omitempty"`

	Country   *string `query:"country" json:"country,omitempty" validate:"omitempty,len=2"`
	CountryID *uint   `query:"countryId" json:"countryId,omitempty"`
	City      *string `query:"city" json:"city,omitempty"`
	CityID    *uint   `query:"cityId" json:"cityId,omitempty"`

	Visible   *bool `query:"visible" json:"visible,omitempty"`
	IsPartner *bool `query:"is_partner" json:"is_partner,omitempty"`
	Approved  *bool `query:"approved" json:"approved,omitempty"`
	Applicant *bool `query:"applicant" json:"applicant,omitempty"`
	IsPromo   *bool `query:"is_promo" json:"is_promo,omitempty"`

	Sort     string `query:"sort" json:"sort,omitempty" validate:"omitempty,oneof=name popular web_verified"`
	Page     int    `query:"page" json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int    `query:"pageSize" json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`

	Legacy *LegacyAgencySearchRequest `json:"legacy,omitempty"`
}

// LegacyAgencySearchRequest is the old nested form shape
type LegacyAgencySearchRequest struct {
	Name        *string `json:"name,omitempty"`
	Website     *string `json:"website,omitempty"`
	Email       *string `json:"email,omitempty"`
	CountryName *string `json:"countryName,omitempty"`
	CityName    *string `json:"cityName,omitempty"`
}

// ToSearchParams converts the request into the typed parameter bag
func (r *AgencySearchRequest) ToSearchParams() models.AgencySearchParams {
	params := models.AgencySearchParams{
		AgencyName: r.AgencyName,
		Name:       r.Name,
		Website:    r.Website,
		Country:    r.Country,
		CountryID:  r.CountryID,
		City:       r.City,
		CityID:     r.CityID,
		Visible:    r.Visible,
		IsPartner:  r.IsPartner,
		Approved:   r.Approved,
		Applicant:  r.Applicant,
		IsPromo:    r.IsPromo,
		Sort:       r.Sort,
		Page:       r.Page,
	}
	if r.Legacy != nil {
		params.Legacy = &models.LegacyAgencySearch{
			Name:        r.Legacy.Name,
			Website:     r.Legacy.Website,
			Email:       r.Legacy.Email,
			CountryName: r.Legacy.CountryName,
			CityName:    r.Legacy.CityName,
		}
	}
	return params
}

// AgencyDTO is the public projection of an agency
type AgencyDTO struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Name        string    `json:"name"`
	Website     string    `json:"website"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Info        *string   `json:"info,omitempty"`
	AgencyPage  string    `json:"agency_page"`
	Visible     bool      `json:"visible"`
	IsPartner   bool      `json:"is_partner"`
	Applicant   bool      `json:"applicant"`
	Approved    bool      `json:"approved"`
	IsPromo     bool      `json:"is_promo"`
	Weight      int       `json:"weight"`
	Probability int       `json:"probability"`
	WebVerified bool      `json:"web_verified"`
	ViewsCount  int64     `json:"views_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AgencyListResponse is one page of the listing search
type AgencyListResponse struct {
	Message    string      `json:"message"`
	Agencies   []AgencyDTO `json:"agencies"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	IsLastPage bool        `json:"is_last_page"`
}

// IDNamePair is one entry of the ordered selection projection
type IDNamePair struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AgencySelectResponse is the ordered id/name projection for UI selects
type AgencySelectResponse struct {
	Message  string       `json:"message"`
	Agencies []IDNamePair `json:"agencies"`
}

// CreateAgencyRequest is the admin create/update payload
type CreateAgencyRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Website     string  `json:"website" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Info        *string `json:"info,omitempty"`
	AgencyPage  string  `json:"agency_page,omitempty" validate:"omitempty,max=255"`
	Visible     *bool   `json:"visible,omitempty"`
	IsPartner   *bool   `json:"is_partner,omitempty"`
	Applicant   *bool   `json:"applicant,omitempty"`
	Approved    *bool   `json:"approved,omitempty"`
	Weight      int     `json:"weight,omitempty"`
	WebVerified *bool   `json:"web_verified,omitempty"`
}

// AgencyResponse wraps a single agency
type AgencyResponse struct {
	Message string    `json:"message"`
	Agency  AgencyDTO `json:"agency"`
}

// RebuildReport is the materializer's status report: one line per pair,
// partitioned into successes and failures.
type RebuildReport struct {
	Message   string   `json:"message"`
	AgencyID  uint     `json:"agency_id"`
	Inserted  []string `json:"inserted"`
	Skipped   []string `json:"skipped"`
	Failed    []string `json:"failed"`
	PairCount int      `json:"pair_count"`
}

// ReferralRow is one raw referral record: a source-URL-like text field plus
// a visit count.
type ReferralRow struct {
	Source   string `json:"source"`
	Visitors int64  `json:"visitors" validate:"min=0"`
}

// ScoreReferralsRequest carries the raw referral rows to score
type ScoreReferralsRequest struct {
	Rows []ReferralRow `json:"rows" validate:"required,dive"`
}

// ReferralReport is the scorer's status report
type ReferralReport struct {
	Message string   `json:"message"`
	Success []string `json:"success"`
	Errors  []string `json:"errors"`
}

// ToAgencyDTO converts an agency model to its public projection
func ToAgencyDTO(a models.Agency) AgencyDTO {
	return AgencyDTO{
		ID:          a.ID,
		UUID:        a.UUID.String(),
		Name:        a.Name,
		Website:     a.Website,
		Phone:       a.Phone,
		Email:       a.Email,
		Info:        a.Info,
		AgencyPage:  a.AgencyPage,
		Visible:     boolVal(a.Visible),
		IsPartner:   boolVal(a.IsPartner),
		Applicant:   boolVal(a.Applicant),
		Approved:    boolVal(a.Approved),
		IsPromo:     boolVal(a.IsPromo),
		Weight:      a.Weight,
		Probability: a.Probability,
		WebVerified: boolVal(a.WebVerified),
		ViewsCount:  a.ViewsCount,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func boolVal(b *bool) bool {
	return b != nil && *b
}
