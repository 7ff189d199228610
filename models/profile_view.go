package models

import "time"

// ProfileView is an append-only view-count event. The directory core counts
// these rows for the "popular" ordering and deletes them only as part of the
// agency delete cascade.
type ProfileView struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	AgencyID uint `gorm:"not null;index:idx_profile_views_agency_id" json:"agency_id"`

	ViewDate time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_profile_views_view_date" json:"view_date"`
}

func (ProfileView) TableName() string {
	return "profile_views"
}

// ProfileViewFilter represents filter criteria for view-count queries
type ProfileViewFilter struct {
	ID       *uint
	AgencyID *uint
}
