package models

import (
	"time"

	"github.com/mostovoy/agency-directory/utils"
)

type Profile struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AgencyID *uint   `gorm:"index:idx_profiles_agency_id" json:"agency_id,omitempty"`
	Agency   *Agency `gorm:"foreignKey:AgencyID" json:"-"`

	CityID *uint `gorm:"index:idx_profiles_city_id" json:"city_id,omitempty"`
	City   *City `gorm:"foreignKey:CityID" json:"-"`

	Gender string `gorm:"size:16;not null" json:"gender"`

	IsBroken   *bool `gorm:"default:false;index:idx_profiles_is_broken" json:"is_broken"`
	IsArchived *bool `gorm:"default:false;index:idx_profiles_is_archived" json:"is_archived"`

	PriceHourIncall  *int `json:"price_hour_incall,omitempty"`
	PriceHourOutcall *int `json:"price_hour_outcall,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsEligible reports whether the profile counts toward public listings and
// the agency-city relation.
func (p *Profile) IsEligible() bool {
	return !utils.IsTrue(p.IsBroken) && !utils.IsTrue(p.IsArchived)
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID         *uint
	AgencyID   *uint
	CityID     *uint
	Gender     *string
	IsBroken   *bool
	IsArchived *bool
}
