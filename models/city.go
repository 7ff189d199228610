package models

// City is a read-only reference entity; the directory consumes it but never
// mutates it.
type City struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;index:idx_cities_name" json:"name"`

	CountriesID uint     `gorm:"not null;index:idx_cities_countries_id" json:"countries_id"`
	Country     *Country `gorm:"foreignKey:CountriesID" json:"country,omitempty"`

	Published *bool `gorm:"default:false" json:"published"`
}

func (City) TableName() string {
	return "cities"
}

// CityFilter represents filter criteria for city queries
type CityFilter struct {
	ID          *uint
	Name        *string
	CountriesID *uint
	Published   *bool
}
