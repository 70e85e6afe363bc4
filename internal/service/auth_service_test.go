package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"meetmap/internal/auth"
	"meetmap/internal/domain"
	"meetmap/pkg/location"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc     *AuthService
	users   *memUsers
	locs    *memLocations
	photos  *fakeUploader
	pub     *fakePublisher
	revoker *auth.MemoryRevoker
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		locs:    newMemLocations(),
		photos:  &fakeUploader{},
		pub:     &fakePublisher{},
		revoker: auth.NewMemoryRevoker(),
	}
	f.users = newMemUsers(f.locs)
	locSvc := NewLocationService(f.locs, f.pub, nil)
	f.svc = NewAuthService(testConfig(), f.users, locSvc, f.photos, f.revoker)
	return f
}

func photo() *Photo {
	return &Photo{Reader: strings.NewReader("jpeg bytes"), Size: 10, Filename: "me.JPG"}
}

func (f *authFixture) register(t *testing.T, email string) Tokens {
	t.Helper()
	_, tokens, err := f.svc.Register(context.Background(), RegisterInput{
		Email: email, Password: "secret1", Name: "Ana", Photo: photo(),
	})
	require.NoError(t, err)
	return tokens
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture()
	u, tokens, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "  Ana@Example.com ",
		Password: "secret1",
		Name:     " Ana ",
		Photo:    photo(),
		Location: &location.GeoPoint{Latitude: -23.55, Longitude: -46.63},
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)

	require.Len(t, f.photos.calls, 1)
	assert.True(t, strings.HasPrefix(f.photos.calls[0], "profile_photos/img_"))
	assert.True(t, strings.HasSuffix(f.photos.calls[0], ".jpg"))
	assert.Equal(t, "https://cdn.test/"+f.photos.calls[0], u.PhotoURL)

	require.NotNil(t, u.Location)
	assert.Equal(t, -23.55, u.Location.Latitude)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, u.ID, f.pub.events[0].UserID)
}

func TestAuthService_Register_WithoutLocation(t *testing.T) {
	f := newAuthFixture()
	u, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "bo@example.com", Password: "secret1", Name: "Bo", Photo: photo(),
	})
	require.NoError(t, err)
	assert.Nil(t, u.Location)
	assert.Zero(t, f.locs.upserts)
}

func TestAuthService_Register_Rejects(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "ana@example.com")

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "ANA@example.com", Password: "secret1", Name: "Other", Photo: photo(),
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Len(t, f.photos.calls, 1, "duplicate email must not upload")

	_, _, err = f.svc.Register(context.Background(), RegisterInput{
		Email: "new@example.com", Password: "secret1", Name: "New",
	})
	assert.ErrorIs(t, err, ErrPhotoRequired)

	_, _, err = f.svc.Register(context.Background(), RegisterInput{
		Email: "new@example.com", Password: "12345", Name: "New", Photo: photo(),
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthService_Register_UploadFailureCreatesNothing(t *testing.T) {
	f := newAuthFixture()
	f.photos.err = errors.New("storage down")
	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "ana@example.com", Password: "secret1", Name: "Ana", Photo: photo(),
	})
	require.Error(t, err)
	_, err = f.users.GetByEmail(context.Background(), "ana@example.com")
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "ana@example.com")

	u, tokens, err := f.svc.Login(context.Background(), "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEmpty(t, tokens.Access)

	_, _, err = f.svc.Login(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = f.svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestAuthService_LogoutRevokesSession(t *testing.T) {
	f := newAuthFixture()
	tokens := f.register(t, "ana@example.com")
	cfg := &testConfig().JWT

	sess, err := SessionFromToken(context.Background(), cfg, f.revoker, tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteHome, ResolveRoute(sess))

	require.NoError(t, f.svc.Logout(context.Background(), sess))
	_, err = SessionFromToken(context.Background(), cfg, f.revoker, tokens.Access)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	_, err = f.svc.Refresh(context.Background(), tokens.Refresh)
	assert.ErrorIs(t, err, auth.ErrRevokedToken, "logout ends the refresh token too")
}

func TestAuthService_LogoutKeepsOtherSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")
	_, first, err := f.svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, second, err := f.svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	sess, err := SessionFromToken(ctx, &testConfig().JWT, f.revoker, first.Access)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, sess))

	_, err = f.svc.Refresh(ctx, second.Refresh)
	assert.NoError(t, err)
}

type failingRevoker struct{}

func (failingRevoker) Revoke(context.Context, string, time.Duration) error {
	return errors.New("valkey down")
}

func (failingRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func TestAuthService_RefreshFailsWhenRevocationFails(t *testing.T) {
	f := newAuthFixture()
	tokens := f.register(t, "ana@example.com")
	f.svc.revoker = failingRevoker{}

	next, err := f.svc.Refresh(context.Background(), tokens.Refresh)
	assert.Error(t, err)
	assert.Empty(t, next.Access)
}

func TestAuthService_RefreshIsSingleUse(t *testing.T) {
	f := newAuthFixture()
	tokens := f.register(t, "ana@example.com")

	next, err := f.svc.Refresh(context.Background(), tokens.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.Refresh, next.Refresh)

	_, err = f.svc.Refresh(context.Background(), tokens.Refresh)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	_, err = f.svc.Refresh(context.Background(), tokens.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	u, _, isNew, err := f.svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-1", Email: "Cai@example.com", EmailVerified: true, Picture: "https://pic"})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "cai", u.Name)
	assert.Equal(t, "https://pic", u.PhotoURL)

	again, _, isNew, err := f.svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-1", Email: "cai@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, again.ID)

	// an email account is linked rather than duplicated
	f.register(t, "ana@example.com")
	linked, _, isNew, err := f.svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-2", Email: "ana@example.com", EmailVerified: true, Name: "Ana G"})
	require.NoError(t, err)
	assert.False(t, isNew)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "g-2", *linked.GoogleID)
	assert.Equal(t, "Ana", linked.Name)
}

func TestAuthService_LoginWithGoogle_UnverifiedEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")

	_, tokens, _, err := f.svc.LoginWithGoogle(ctx, GoogleProfile{ID: "g-9", Email: "ana@example.com"})
	assert.ErrorIs(t, err, ErrEmailUnverified)
	assert.Empty(t, tokens.Access)

	u, err := f.users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Nil(t, u.GoogleID, "unverified identity must not be linked")
}

func TestAuthService_CurrentUser(t *testing.T) {
	f := newAuthFixture()
	u, err := f.svc.CurrentUser(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.svc.CurrentUser(context.Background(), &Session{UserID: 99})
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestResolveRoute(t *testing.T) {
	assert.Equal(t, domain.RouteLogin, ResolveRoute(nil))
	assert.Equal(t, domain.RouteLogin, ResolveRoute(&Session{}))
	assert.Equal(t, domain.RouteHome, ResolveRoute(&Session{UserID: 1}))
}

func TestPhotoName(t *testing.T) {
	a, b := photoName("me.PNG"), photoName("noext")
	assert.Regexp(t, `^img_[0-9a-f]{16}\.png$`, a)
	assert.Regexp(t, `^img_[0-9a-f]{16}$`, b)
}
