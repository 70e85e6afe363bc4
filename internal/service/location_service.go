package service

import (
	"context"
	"errors"
	"log/slog"

	"meetmap/internal/events"
	"meetmap/internal/metrics"
	"meetmap/internal/models"
	"meetmap/pkg/geocode"
	"meetmap/pkg/location"

	"gorm.io/gorm"
)

var (
	ErrInvalidCoordinates = errors.New("invalid latitude and longitude")
	ErrNoLocation         = errors.New("location not shared yet")
)

type LocationService struct {
	locations LocationStore
	publisher LocationPublisher
	geocoder  Geocoder
}

func NewLocationService(locations LocationStore, publisher LocationPublisher, geocoder Geocoder) *LocationService {
	return &LocationService{locations: locations, publisher: publisher, geocoder: geocoder}
}

// Update overwrites the user's stored position with a fresh device fix.
// (0,0) is rejected: devices report it when they have no fix.
func (s *LocationService) Update(ctx context.Context, userID uint, p location.GeoPoint) (*models.UserLocation, error) {
	if !p.Valid() || p.IsZero() {
		return nil, ErrInvalidCoordinates
	}
	loc := &models.UserLocation{
		UserID:        userID,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		LastUpdatedAt: now(),
	}
	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, err
	}
	metrics.LocationUpdates.Inc()
	if s.publisher != nil {
		ev := events.LocationEvent{
			UserID:    userID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			UpdatedAt: loc.LastUpdatedAt.Unix(),
		}
		if err := s.publisher.PublishLocation(ctx, ev); err != nil {
			slog.Warn("location event not published", "component", "location", "user_id", userID, "err", err)
		}
	}
	return loc, nil
}

// Get returns the stored location, or nil when the user never shared one.
func (s *LocationService) Get(ctx context.Context, userID uint) (*models.UserLocation, error) {
	loc, err := s.locations.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return loc, err
}

// Place reverse geocodes the user's stored location.
func (s *LocationService) Place(ctx context.Context, userID uint) (*geocode.Place, error) {
	loc, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrNoLocation
	}
	return s.geocoder.Reverse(ctx, loc.Point())
}

// Markers returns every stored location for the live map's initial state.
func (s *LocationService) Markers(ctx context.Context) ([]events.LocationEvent, error) {
	list, err := s.locations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]events.LocationEvent, len(list))
	for i, l := range list {
		out[i] = events.LocationEvent{
			UserID:    l.UserID,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			UpdatedAt: l.LastUpdatedAt.Unix(),
		}
	}
	return out, nil
}
