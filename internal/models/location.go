package models

import (
	"time"

	"meetmap/pkg/location"
)

// UserLocation is the last position a user's device reported. One row per
// user; every update overwrites it.
type UserLocation struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude      float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude     float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	LastUpdatedAt time.Time `gorm:"not null;index" json:"last_updated_at"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (UserLocation) TableName() string {
	return "user_locations"
}

func (l *UserLocation) Point() location.GeoPoint {
	return location.GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}
