package models

// AgencyCity is the materialized agency-city association. It asserts that an
// agency has at least one eligible profile in a city, is fully owned by the
// rebuild flow, and is always replaced wholesale per agency, never patched.
type AgencyCity struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	AgencyID uint `gorm:"not null;uniqueIndex:uk_agency_cities_pair;index:idx_agency_cities_agency_id" json:"agency_id"`
	CityID   uint `gorm:"not null;uniqueIndex:uk_agency_cities_pair" json:"city_id"`

	Agency *Agency `gorm:"foreignKey:AgencyID" json:"-"`
	City   *City   `gorm:"foreignKey:CityID" json:"-"`
}

func (AgencyCity) TableName() string {
	return "agency_cities"
}

// AgencyCityPair is a distinct (city, agency) pair snapshotted from the
// profiles table during a rebuild.
type AgencyCityPair struct {
	CityID   uint `json:"city_id"`
	AgencyID uint `json:"agency_id"`
}

// AgencyCityFilter represents filter criteria for association queries
type AgencyCityFilter struct {
	ID       *uint
	AgencyID *uint
	CityID   *uint
}
