package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"meetmap/config"
	"meetmap/internal/events"
	"meetmap/internal/models"
	"meetmap/pkg/geocode"
	"meetmap/pkg/location"

	"gorm.io/gorm"
)

// --- in-memory stores ---

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.User
	locs   *memLocations
	err    error
}

func newMemUsers(locs *memLocations) *memUsers {
	return &memUsers{byID: map[uint]*models.User{}, locs: locs}
}

func (m *memUsers) withLocation(u models.User) models.User {
	if m.locs != nil {
		if l, ok := m.locs.rows[u.ID]; ok {
			cp := l
			u.Location = &cp
		}
	}
	return u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.withLocation(*u)
	return &out, nil
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if match(u) {
			out := m.withLocation(*u)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (m *memUsers) GetByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, m.withLocation(*u))
		}
	}
	return out, nil
}

func (m *memUsers) ListOthers(_ context.Context, excludeID uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []models.User{}
	for id, u := range m.byID {
		if id != excludeID {
			out = append(out, m.withLocation(*u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Location = nil
	m.byID[u.ID] = &cp
	return nil
}

type memLocations struct {
	rows    map[uint]models.UserLocation
	upserts int
	getErr  error
}

func newMemLocations() *memLocations {
	return &memLocations{rows: map[uint]models.UserLocation{}}
}

func (m *memLocations) Upsert(_ context.Context, loc *models.UserLocation) error {
	m.upserts++
	m.rows[loc.UserID] = *loc
	return nil
}

func (m *memLocations) GetByUserID(_ context.Context, userID uint) (*models.UserLocation, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	l, ok := m.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (m *memLocations) ListAll(_ context.Context) ([]models.UserLocation, error) {
	out := make([]models.UserLocation, 0, len(m.rows))
	for _, l := range m.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type favKey struct{ user, target uint }

type memFavorites struct {
	order []favKey
	set   map[favKey]bool
}

func newMemFavorites() *memFavorites {
	return &memFavorites{set: map[favKey]bool{}}
}

func (m *memFavorites) Add(_ context.Context, userID, targetID uint) (bool, error) {
	k := favKey{userID, targetID}
	if m.set[k] {
		return false, nil
	}
	m.set[k] = true
	m.order = append(m.order, k)
	return true, nil
}

func (m *memFavorites) Remove(_ context.Context, userID, targetID uint) (bool, error) {
	k := favKey{userID, targetID}
	if !m.set[k] {
		return false, nil
	}
	delete(m.set, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *memFavorites) IsFavorite(_ context.Context, userID, targetID uint) (bool, error) {
	return m.set[favKey{userID, targetID}], nil
}

func (m *memFavorites) ListIDs(_ context.Context, userID uint) ([]uint, error) {
	var out []uint
	for _, k := range m.order {
		if k.user == userID {
			out = append(out, k.target)
		}
	}
	return out, nil
}

// --- collaborators ---

type fakeUploader struct {
	calls []string
	err   error
}

func (f *fakeUploader) UploadImage(_ context.Context, r io.Reader, _ int64, folder, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	f.calls = append(f.calls, folder+"/"+name)
	return "https://cdn.test/" + folder + "/" + name, nil
}

type fakePublisher struct {
	events []events.LocationEvent
	err    error
}

func (f *fakePublisher) PublishLocation(_ context.Context, ev events.LocationEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

type fakeGeocoder struct {
	place *geocode.Place
	err   error
	asked []location.GeoPoint
}

func (f *fakeGeocoder) Reverse(_ context.Context, p location.GeoPoint) (*geocode.Place, error) {
	f.asked = append(f.asked, p)
	return f.place, f.err
}

type notification struct{ target, by uint }

type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) NotifyFavorited(_ context.Context, target, by *models.User) error {
	f.sent = append(f.sent, notification{target.ID, by.ID})
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "meetmap-test",
		},
		Media: config.MediaConfig{Driver: "cloudinary", Folder: "profile_photos"},
	}
}
