package service

import (
	"context"
	"log/slog"

	"meetmap/internal/domain"
	"meetmap/internal/metrics"
	"meetmap/internal/models"
	"meetmap/pkg/location"
	"meetmap/pkg/nearby"
)

// NearbyResult is one presentation pass over the roster.
type NearbyResult struct {
	Self       *location.GeoPoint
	SelfSource string
	Entries    []nearby.Annotated
}

type NearbyService struct {
	users     UserStore
	locations *LocationService
}

func NewNearbyService(users UserStore, locations *LocationService) *NearbyService {
	return &NearbyService{users: users, locations: locations}
}

// Roster returns every other user, including those without a location.
func (s *NearbyService) Roster(ctx context.Context, sess *Session) ([]models.User, error) {
	return s.users.ListOthers(ctx, sess.UserID)
}

// Nearby annotates the roster with distances from the caller. fix is the
// device's current position; when it is missing or invalid the stored
// location is used, and when that is missing too distances are left unknown.
func (s *NearbyService) Nearby(ctx context.Context, sess *Session, fix *location.GeoPoint) (*NearbyResult, error) {
	self, source := s.selfLocation(ctx, sess, fix)
	roster, err := s.Roster(ctx, sess)
	if err != nil {
		return nil, err
	}
	entries := make([]nearby.Entry, len(roster))
	for i := range roster {
		u := &roster[i]
		entries[i] = nearby.Entry{
			UserID:   u.ID,
			Name:     u.Name,
			Email:    u.Email,
			PhotoURL: u.PhotoURL,
			Location: u.GeoPoint(),
		}
	}
	out := nearby.Present(self, entries)

	metrics.NearbyPresentations.WithLabelValues(source).Inc()
	known := 0
	for _, a := range out {
		if a.Known() {
			known++
		}
	}
	metrics.NearbyEntries.WithLabelValues("known").Add(float64(known))
	metrics.NearbyEntries.WithLabelValues("unknown").Add(float64(len(out) - known))

	return &NearbyResult{Self: self, SelfSource: source, Entries: out}, nil
}

func (s *NearbyService) selfLocation(ctx context.Context, sess *Session, fix *location.GeoPoint) (*location.GeoPoint, string) {
	if fix != nil && fix.Valid() && !fix.IsZero() {
		p := *fix
		return &p, domain.SelfLocationQuery
	}
	if s.locations == nil {
		return nil, domain.SelfLocationAbsent
	}
	loc, err := s.locations.Get(ctx, sess.UserID)
	if err != nil {
		slog.Warn("stored location unavailable", "component", "nearby", "user_id", sess.UserID, "err", err)
		return nil, domain.SelfLocationAbsent
	}
	if loc == nil {
		return nil, domain.SelfLocationAbsent
	}
	p := loc.Point()
	return &p, domain.SelfLocationStored
}
