package service

import (
	"context"
	"io"

	"meetmap/internal/events"
	"meetmap/internal/models"
	"meetmap/pkg/geocode"
	"meetmap/pkg/location"
)

// UserStore is implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	ListOthers(ctx context.Context, excludeID uint) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// LocationStore is implemented by repository.LocationRepository.
type LocationStore interface {
	Upsert(ctx context.Context, loc *models.UserLocation) error
	GetByUserID(ctx context.Context, userID uint) (*models.UserLocation, error)
	ListAll(ctx context.Context) ([]models.UserLocation, error)
}

// FavoriteStore is implemented by repository.FavoriteRepository.
type FavoriteStore interface {
	Add(ctx context.Context, userID, targetID uint) (bool, error)
	Remove(ctx context.Context, userID, targetID uint) (bool, error)
	IsFavorite(ctx context.Context, userID, targetID uint) (bool, error)
	ListIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PhotoUploader stores an image and returns its public URL.
type PhotoUploader interface {
	UploadImage(ctx context.Context, r io.Reader, size int64, folder, name string) (string, error)
}

// LocationPublisher fans out stored location updates.
type LocationPublisher interface {
	PublishLocation(ctx context.Context, ev events.LocationEvent) error
}

// Geocoder turns a point into a human readable place.
type Geocoder interface {
	Reverse(ctx context.Context, p location.GeoPoint) (*geocode.Place, error)
}

// Notifier pushes a notification to a user's device.
type Notifier interface {
	NotifyFavorited(ctx context.Context, target, by *models.User) error
}
