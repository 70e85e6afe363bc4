package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/middleware"
	"meetmap/internal/models"
	"meetmap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- stub stores ---

type stubUsers struct {
	byID map[uint]*models.User
	locs *stubLocations
}

func (s *stubUsers) attach(u models.User) models.User {
	if l, ok := s.locs.rows[u.ID]; ok {
		cp := l
		u.Location = &cp
	}
	return u
}

func (s *stubUsers) Create(_ context.Context, u *models.User) error {
	u.ID = uint(len(s.byID) + 1)
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := s.attach(*u)
	return &out, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			out := s.attach(*u)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) GetByGoogleID(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) GetByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out = append(out, s.attach(*u))
		}
	}
	return out, nil
}

func (s *stubUsers) ListOthers(_ context.Context, excludeID uint) ([]models.User, error) {
	out := []models.User{}
	for id, u := range s.byID {
		if id != excludeID {
			out = append(out, s.attach(*u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubUsers) Update(_ context.Context, u *models.User) error {
	cp := *u
	cp.Location = nil
	s.byID[u.ID] = &cp
	return nil
}

type stubLocations struct {
	rows map[uint]models.UserLocation
}

func (s *stubLocations) Upsert(_ context.Context, loc *models.UserLocation) error {
	s.rows[loc.UserID] = *loc
	return nil
}

func (s *stubLocations) GetByUserID(_ context.Context, userID uint) (*models.UserLocation, error) {
	l, ok := s.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (s *stubLocations) ListAll(context.Context) ([]models.UserLocation, error) {
	out := []models.UserLocation{}
	for _, l := range s.rows {
		out = append(out, l)
	}
	return out, nil
}

type stubFavorites struct {
	ids map[uint][]uint
}

func (s *stubFavorites) Add(_ context.Context, userID, targetID uint) (bool, error) {
	for _, id := range s.ids[userID] {
		if id == targetID {
			return false, nil
		}
	}
	s.ids[userID] = append(s.ids[userID], targetID)
	return true, nil
}

func (s *stubFavorites) Remove(_ context.Context, userID, targetID uint) (bool, error) {
	list := s.ids[userID]
	for i, id := range list {
		if id == targetID {
			s.ids[userID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubFavorites) IsFavorite(_ context.Context, userID, targetID uint) (bool, error) {
	for _, id := range s.ids[userID] {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubFavorites) ListIDs(_ context.Context, userID uint) ([]uint, error) {
	return s.ids[userID], nil
}

// --- test server ---

type testServer struct {
	engine  *gin.Engine
	cfg     *config.Config
	users   *stubUsers
	locs    *stubLocations
	revoker *auth.MemoryRevoker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "meetmap-test",
		},
		Media: config.MediaConfig{Driver: "cloudinary", Folder: "profile_photos"},
	}
	locs := &stubLocations{rows: map[uint]models.UserLocation{}}
	users := &stubUsers{byID: map[uint]*models.User{}, locs: locs}
	revoker := auth.NewMemoryRevoker()

	locationSvc := service.NewLocationService(locs, nil, nil)
	authSvc := service.NewAuthService(cfg, users, locationSvc, nil, revoker)
	nearbySvc := service.NewNearbyService(users, locationSvc)
	favoriteSvc := service.NewFavoriteService(&stubFavorites{ids: map[uint][]uint{}}, users, nil)

	authH := NewAuthHandler(authSvc, cfg, revoker)
	locH := NewLocationHandler(locationSvc)
	nearbyH := NewNearbyHandler(nearbySvc)
	favH := NewFavoriteHandler(favoriteSvc)
	authMw := middleware.AuthRequired(&cfg.JWT, revoker)

	r := gin.New()
	r.GET("/session", authH.Session)
	r.POST("/logout", authMw, authH.Logout)
	r.PATCH("/me/location", authMw, locH.UpdateLocation)
	r.GET("/me/location", authMw, locH.GetMyLocation)
	r.GET("/nearby", authMw, nearbyH.Nearby)
	r.GET("/users", authMw, nearbyH.Users)
	r.POST("/favorites/:user_id", authMw, favH.Add)
	r.DELETE("/favorites/:user_id", authMw, favH.Remove)
	r.GET("/me/favorites", authMw, favH.List)

	return &testServer{engine: r, cfg: cfg, users: users, locs: locs, revoker: revoker}
}

func (s *testServer) addUser(t *testing.T, name string, loc *models.UserLocation) uint {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, s.users.Create(context.Background(), u))
	if loc != nil {
		loc.UserID = u.ID
		s.locs.rows[u.ID] = *loc
	}
	return u.ID
}

func (s *testServer) token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(&s.cfg.JWT, userID, "x@example.com", "")
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}
