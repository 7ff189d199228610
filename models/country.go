package models

// Country is a read-only reference entity.
type Country struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:2;not null;uniqueIndex:uk_countries_code" json:"code"`
	Name string `gorm:"size:255;not null" json:"name"`

	Published *bool `gorm:"default:false" json:"published"`
}

func (Country) TableName() string {
	return "countries"
}

// CountryFilter represents filter criteria for country queries
type CountryFilter struct {
	ID        *uint
	Code      *string
	Name      *string
	Published *bool
}
