// Package testing provides test utilities and database setup for testing the directory service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCountry creates a country with the given code and published state
func (tf *TestFixtures) CreateTestCountry(code, name string, published bool) (*models.Country, error) {
	country := &models.Country{
		Code:      code,
		Name:      name,
		Published: utils.ToPtr(published),
	}
	if err := tf.DB.DB.Create(country).Error; err != nil {
		return nil, fmt.Errorf("failed to create test country %s: %w", code, err)
	}
	return country, nil
}

// CreateTestCity creates a city belonging to the given country
func (tf *TestFixtures) CreateTestCity(name string, countryID uint, published bool) (*models.City, error) {
	city := &models.City{
		Name:        name,
		CountriesID: countryID,
		Published:   utils.ToPtr(published),
	}
	if err := tf.DB.DB.Create(city).Error; err != nil {
		return nil, fmt.Errorf("failed to create test city %s: %w", name, err)
	}
	return city, nil
}

// AgencyOption mutates an agency fixture before it is persisted
type AgencyOption func(*models.Agency)

// WithVisible sets the visibility flag
func WithVisible(v bool) AgencyOption {
	return func(a *models.Agency) { a.Visible = utils.ToPtr(v) }
}

// WithWebsite sets the website
func WithWebsite(w string) AgencyOption {
	return func(a *models.Agency) { a.Website = w }
}

// WithApplicant sets the applicant flag
func WithApplicant(v bool) AgencyOption {
	return func(a *models.Agency) { a.Applicant = utils.ToPtr(v) }
}

// WithApproved sets the approved flag
func WithApproved(v bool) AgencyOption {
	return func(a *models.Agency) { a.Approved = utils.ToPtr(v) }
}

// WithIsPromo sets the promotion flag
func WithIsPromo(v bool) AgencyOption {
	return func(a *models.Agency) { a.IsPromo = utils.ToPtr(v) }
}

// WithIsPartner sets the partner flag
func WithIsPartner(v bool) AgencyOption {
	return func(a *models.Agency) { a.IsPartner = utils.ToPtr(v) }
}

// WithWebVerified sets the web verification flag
func WithWebVerified(v bool) AgencyOption {
	return func(a *models.Agency) { a.WebVerified = utils.ToPtr(v) }
}

// WithEmail sets the contact email
func WithEmail(e string) AgencyOption {
	return func(a *models.Agency) { a.Email = utils.ToPtr(e) }
}

// CreateTestAgency creates a visible agency with a unique name unless options
// override the defaults
func (tf *TestFixtures) CreateTestAgency(name string, opts ...AgencyOption) (*models.Agency, error) {
	agency := &models.Agency{
		UUID:        uuid.New(),
		Name:        name,
		Website:     fmt.Sprintf("https://%s-%d.example.com", uuid.NewString()[:8], rand.Intn(10000)),
		Visible:     utils.ToPtr(true),
		IsPartner:   utils.ToPtr(false),
		Applicant:   utils.ToPtr(false),
		Approved:    utils.ToPtr(true),
		IsPromo:     utils.ToPtr(false),
		WebVerified: utils.ToPtr(false),
	}
	for _, opt := range opts {
		opt(agency)
	}
	if err := tf.DB.DB.Create(agency).Error; err != nil {
		return nil, fmt.Errorf("failed to create test agency %s: %w", name, err)
	}
	return agency, nil
}

// CreateTestProfile creates an eligible profile linked to the given agency and city
func (tf *TestFixtures) CreateTestProfile(agencyID, cityID *uint) (*models.Profile, error) {
	profile := &models.Profile{
		AgencyID:   agencyID,
		CityID:     cityID,
		Gender:     utils.DefaultGender,
		IsBroken:   utils.ToPtr(false),
		IsArchived: utils.ToPtr(false),
	}
	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test profile: %w", err)
	}
	return profile, nil
}

// CreateBrokenTestProfile creates a profile that listings and rebuilds must skip
func (tf *TestFixtures) CreateBrokenTestProfile(agencyID, cityID *uint) (*models.Profile, error) {
	profile := &models.Profile{
		AgencyID: agencyID,
		CityID:   cityID,
		Gender:   utils.DefaultGender,
		IsBroken: utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create broken test profile: %w", err)
	}
	return profile, nil
}

// CreateTestProfileViews creates n view events for the agency
func (tf *TestFixtures) CreateTestProfileViews(agencyID uint, n int) error {
	for i := 0; i < n; i++ {
		view := &models.ProfileView{
			AgencyID: agencyID,
			ViewDate: time.Now().UTC().Add(-time.Duration(i) * time.Hour),
		}
		if err := tf.DB.DB.Create(view).Error; err != nil {
			return fmt.Errorf("failed to create test profile view: %w", err)
		}
	}
	return nil
}
