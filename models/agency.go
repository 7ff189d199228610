// Package models contains domain entities and business models for the directory system
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mostovoy/agency-directory/utils"
	"gorm.io/gorm"
)

type Agency struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_agencies_uuid" json:"uuid"`

	Name    string `gorm:"size:255;not null;index:idx_agencies_name" json:"name"`
	Website string `gorm:"size:255;index:idx_agencies_website" json:"website"`

	// Contact fields are NULL when empty, never "".
	Phone *string `gorm:"size:32" json:"phone,omitempty"`
	Email *string `gorm:"size:255" json:"email,omitempty"`
	Info  *string `gorm:"type:text" json:"info,omitempty"`

	// AgencyPage is the slug-like page key, derived from the name when absent
	AgencyPage string `gorm:"size:255;index:idx_agencies_agency_page" json:"agency_page"`

	Visible   *bool `gorm:"default:false;index:idx_agencies_visible" json:"visible"`
	IsPartner *bool `gorm:"default:false" json:"is_partner"`
	Applicant *bool `gorm:"default:false" json:"applicant"`
	Approved  *bool `gorm:"default:false" json:"approved"`

	IsPromo     *bool `gorm:"default:false" json:"is_promo"`
	Weight      int   `gorm:"default:0" json:"weight"`
	Probability int   `gorm:"default:0" json:"probability"` // 0..utils.MaxProbability
	WebVerified *bool `gorm:"default:false" json:"web_verified"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_agencies_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// ViewsCount is the profile-view aggregate computed by the listing query;
	// it is never stored.
	ViewsCount int64 `gorm:"->;-:migration" json:"views_count,omitempty"`

	// Relations
	Profiles     []Profile     `gorm:"foreignKey:AgencyID" json:"-"`
	AgencyCities []AgencyCity  `gorm:"foreignKey:AgencyID" json:"-"`
	ProfileViews []ProfileView `gorm:"foreignKey:AgencyID" json:"-"`
}

func (Agency) TableName() string {
	return "agencies"
}

// CacheTag is the tag under which cached agency collection reads are grouped;
// any write to the collection invalidates it.
func (Agency) CacheTag() string {
	return "agencies"
}

// BeforeSave trims the name, folds empty contact fields to NULL, and derives
// the page key from the name when it is not set.
func (a *Agency) BeforeSave(tx *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)

	a.Phone = utils.NilIfEmpty(a.Phone)
	a.Email = utils.NilIfEmpty(a.Email)
	a.Info = utils.NilIfEmpty(a.Info)

	if a.AgencyPage == "" {
		a.AgencyPage = utils.Slugify(a.Name)
	}

	return nil
}

// BeforeCreate stamps creation and update times.
func (a *Agency) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	a.UpdatedAt = a.CreatedAt
	return nil
}

// BeforeUpdate refreshes the update timestamp on every mutation.
func (a *Agency) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = utils.UTCNow()
	return nil
}

// AgencyIDName is the id/name projection used by UI selection widgets; the
// slice order carries the name ordering.
type AgencyIDName struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AgencyFilter represents filter criteria for direct agency queries
type AgencyFilter struct {
	ID          *uint
	UUID        *uuid.UUID
	Name        *string
	Website     *string
	AgencyPage  *string
	Visible     *bool
	IsPartner   *bool
	Applicant   *bool
	Approved    *bool
	IsPromo     *bool
	WebVerified *bool
}
