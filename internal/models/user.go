package models

import (
	"time"

	"meetmap/pkg/location"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:120;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	PhotoURL     string         `gorm:"size:512" json:"photo_url"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	FCMToken     string         `gorm:"size:512" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Location *UserLocation `gorm:"foreignKey:UserID" json:"location,omitempty"`
}

// GeoPoint returns the user's last known position, or nil if never shared.
func (u *User) GeoPoint() *location.GeoPoint {
	if u.Location == nil {
		return nil
	}
	p := u.Location.Point()
	return &p
}
