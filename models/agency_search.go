package models

import (
	"errors"

	"github.com/mostovoy/agency-directory/utils"
)

// ErrInvalidPageSize is returned when a caller asks for a non-positive page
// size; zero is a caller error, never silently coerced.
var ErrInvalidPageSize = errors.New("page size must be greater than zero")

// IsLastPage reports whether currentPage is at or past the final page for
// the given distinct total.
func IsLastPage(total int64, pageSize, currentPage int) (bool, error) {
	if pageSize <= 0 {
		return false, ErrInvalidPageSize
	}
	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return int64(currentPage) >= totalPages, nil
}

// AgencySearchParams is the typed form of the loosely-keyed search parameter
// bag. Every field is optional; absent fields contribute no predicate.
// Legacy carries the old nested AgencySearch form shape that some admin
// screens still submit.
type AgencySearchParams struct {
	// AgencyName is the public quick-search box: contains on name only.
	AgencyName *string

	// Name is the admin search box: contains on name OR website.
	Name *string

	Website *string

	Country   *string // country code, exact
	CountryID *uint
	City      *string // city name, exact
	CityID    *uint

	Visible   *bool
	IsPartner *bool
	Approved  *bool
	Applicant *bool

	// IsPromo is a toggle that excludes the given promo state; it is
	// rendered as an inequality, never an equality.
	IsPromo *bool

	Sort string
	Page int

	Legacy *LegacyAgencySearch
}

// LegacyAgencySearch mirrors the nested [0][AgencySearch] shape of the old
// form submissions.
type LegacyAgencySearch struct {
	Name        *string
	Website     *string
	Email       *string
	CountryName *string
	CityName    *string
}

func (p *AgencySearchParams) legacy() *LegacyAgencySearch {
	if p.Legacy != nil {
		return p.Legacy
	}
	return &LegacyAgencySearch{}
}

// PredicateOp enumerates the fragment kinds the catalog can emit.
type PredicateOp int

const (
	// OpEqual is column = value
	OpEqual PredicateOp = iota
	// OpNotEqual is column <> value
	OpNotEqual
	// OpContains is a case-insensitive containment match on one column
	OpContains
	// OpContainsEither is a case-insensitive containment match on either of
	// two columns
	OpContainsEither
)

// SearchPredicate is one conjunct of the composed filter. Columns are
// qualified storage column names; rendering into SQL is the repository's
// concern.
type SearchPredicate struct {
	Op       PredicateOp
	Column   string
	OrColumn string // second column for OpContainsEither
	Value    any
}

// Ordering selects the listing sort clause.
type Ordering int

const (
	// OrderByWebVerified is the default: verification flag then weight,
	// both descending.
	OrderByWebVerified Ordering = iota
	// OrderByName is ascending by display name.
	OrderByName
	// OrderByPopular is descending by the profile-view aggregate.
	OrderByPopular
)

// ResolveOrdering maps the sort key to an ordering; unknown or absent keys
// fall back to the web-verified default.
func ResolveOrdering(sort string) Ordering {
	switch sort {
	case utils.SortByName:
		return OrderByName
	case utils.SortByPopular:
		return OrderByPopular
	default:
		return OrderByWebVerified
	}
}

// predicateFunc is one catalog entry: a pure function from the parameter bag
// to at most one fragment. A nil result is a no-op and must never be
// conjoined.
type predicateFunc func(*AgencySearchParams) *SearchPredicate

// searchCatalog lists the catalog entries in composition order.
var searchCatalog = []predicateFunc{
	byQueryString,
	byApplicant,
	byCountry,
	byCity,
	byCityID,
	byWebsite,
	byEmail,
	byApproved,
	byIsPromo,
	byNameOrWebsite,
	byVisible,
	byIsPartner,
}

// Compose folds the catalog over the parameter bag into an ordered conjunct
// set. It is stateless: identical params always yield an identical set.
func (p *AgencySearchParams) Compose() []SearchPredicate {
	var predicates []SearchPredicate
	for _, fn := range searchCatalog {
		if fragment := fn(p); fragment != nil {
			predicates = append(predicates, *fragment)
		}
	}
	return predicates
}

func byQueryString(p *AgencySearchParams) *SearchPredicate {
	if p.AgencyName != nil && *p.AgencyName != "" {
		return &SearchPredicate{Op: OpContains, Column: "agencies.name", Value: *p.AgencyName}
	}
	return nil
}

func byApplicant(p *AgencySearchParams) *SearchPredicate {
	if p.Applicant != nil {
		return &SearchPredicate{Op: OpEqual, Column: "agencies.applicant", Value: *p.Applicant}
	}
	return nil
}

// byCountry prefers the code over the id over the legacy name search.
func byCountry(p *AgencySearchParams) *SearchPredicate {
	if p.Country != nil && *p.Country != "" {
		return &SearchPredicate{Op: OpEqual, Column: "countries.code", Value: *p.Country}
	}
	if p.CountryID != nil {
		return &SearchPredicate{Op: OpEqual, Column: "countries.id", Value: *p.CountryID}
	}
	if name := p.legacy().CountryName; name != nil && *name != "" {
		return &SearchPredicate{Op: OpContains, Column: "countries.name", Value: *name}
	}
	return nil
}

// byCity is suppressed whenever a city id is supplied, even a zero one; the
// id form always wins over the name form.
func byCity(p *AgencySearchParams) *SearchPredicate {
	if p.City != nil && *p.City != "" && p.CityID == nil {
		return &SearchPredicate{Op: OpEqual, Column: "cities.name", Value: *p.City}
	}
	if name := p.legacy().CityName; name != nil && *name != "" && p.CityID == nil {
		return &SearchPredicate{Op: OpEqual, Column: "cities.name", Value: *name}
	}
	return nil
}

func byCityID(p *AgencySearchParams) *SearchPredicate {
	if p.CityID != nil && *p.CityID != 0 {
		return &SearchPredicate{Op: OpEqual, Column: "cities.id", Value: *p.CityID}
	}
	return nil
}

func byWebsite(p *AgencySearchParams) *SearchPredicate {
	if p.Website != nil && *p.Website != "" {
		return &SearchPredicate{Op: OpContains, Column: "agencies.website", Value: *p.Website}
	}
	if site := p.legacy().Website; site != nil && *site != "" {
		return &SearchPredicate{Op: OpContains, Column: "agencies.website", Value: *site}
	}
	return nil
}

func byEmail(p *AgencySearchParams) *SearchPredicate {
	if email := p.legacy().Email; email != nil && *email != "" {
		return &SearchPredicate{Op: OpContains, Column: "agencies.email", Value: *email}
	}
	return nil
}

func byApproved(p *AgencySearchParams) *SearchPredicate {
	if p.Approved != nil {
		return &SearchPredicate{Op: OpEqual, Column: "agencies.approved", Value: *p.Approved}
	}
	return nil
}

// byIsPromo excludes the given promo state rather than selecting it.
func byIsPromo(p *AgencySearchParams) *SearchPredicate {
	if p.IsPromo != nil {
		return &SearchPredicate{Op: OpNotEqual, Column: "agencies.is_promo", Value: *p.IsPromo}
	}
	return nil
}

// byNameOrWebsite serves the combined admin search: the legacy nested name
// takes precedence over the top-level one. The quick-search box wins over
// both, so at most one name predicate is ever emitted.
func byNameOrWebsite(p *AgencySearchParams) *SearchPredicate {
	if p.AgencyName != nil && *p.AgencyName != "" {
		return nil
	}
	if name := p.legacy().Name; name != nil && *name != "" {
		return &SearchPredicate{Op: OpContainsEither, Column: "agencies.name", OrColumn: "agencies.website", Value: *name}
	}
	if p.Name != nil && *p.Name != "" {
		return &SearchPredicate{Op: OpContainsEither, Column: "agencies.name", OrColumn: "agencies.website", Value: *p.Name}
	}
	return nil
}

func byVisible(p *AgencySearchParams) *SearchPredicate {
	if p.Visible != nil {
		return &SearchPredicate{Op: OpEqual, Column: "agencies.visible", Value: *p.Visible}
	}
	return nil
}

func byIsPartner(p *AgencySearchParams) *SearchPredicate {
	if p.IsPartner != nil {
		return &SearchPredicate{Op: OpEqual, Column: "agencies.is_partner", Value: *p.IsPartner}
	}
	return nil
}

// NeedsLocationJoin reports whether any composed predicate references the
// city or country tables, so the repository can skip the joins otherwise.
func NeedsLocationJoin(predicates []SearchPredicate) bool {
	for _, pr := range predicates {
		switch pr.Column {
		case "cities.id", "cities.name", "countries.id", "countries.code", "countries.name":
			return true
		}
	}
	return false
}
