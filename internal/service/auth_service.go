package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"meetmap/config"
	"meetmap/internal/auth"
	"meetmap/internal/domain"
	"meetmap/internal/models"
	"meetmap/pkg/location"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidCreds    = errors.New("invalid email or password")
	ErrPhotoRequired   = errors.New("profile photo required")
	ErrWeakPassword    = fmt.Errorf("password must be at least %d characters", domain.MinPasswordLength)
	ErrEmailUnverified = errors.New("google email not verified")
)

type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Photo is an uploaded image waiting to be stored.
type Photo struct {
	Reader   io.Reader
	Size     int64
	Filename string
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Photo    *Photo
	Location *location.GeoPoint
}

// GoogleProfile is the verified identity returned by Google sign-in.
type GoogleProfile struct {
	ID            string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type AuthService struct {
	cfg       *config.Config
	users     UserStore
	locations *LocationService
	photos    PhotoUploader
	revoker   auth.Revoker
}

func NewAuthService(cfg *config.Config, users UserStore, locations *LocationService, photos PhotoUploader, revoker auth.Revoker) *AuthService {
	return &AuthService{cfg: cfg, users: users, locations: locations, photos: photos, revoker: revoker}
}

// Register creates an email/password account. The photo is stored first so a
// failed upload leaves no half-created user behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, Tokens, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Photo == nil || in.Photo.Reader == nil {
		return nil, Tokens{}, ErrPhotoRequired
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, Tokens{}, ErrWeakPassword
	}
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, Tokens{}, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, err
	}
	photoURL, err := s.photos.UploadImage(ctx, in.Photo.Reader, in.Photo.Size, s.cfg.Media.Folder, photoName(in.Photo.Filename))
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("upload photo: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Tokens{}, err
	}
	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		PhotoURL:     photoURL,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, Tokens{}, err
	}
	if in.Location != nil && s.locations != nil {
		loc, err := s.locations.Update(ctx, u.ID, *in.Location)
		if err != nil {
			slog.Warn("initial location not stored", "component", "auth", "user_id", u.ID, "err", err)
		} else {
			u.Location = loc
		}
	}
	tokens, err := s.issue(u)
	return u, tokens, err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, Tokens, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Tokens{}, ErrInvalidCreds
		}
		return nil, Tokens{}, err
	}
	if u.PasswordHash == "" {
		return nil, Tokens{}, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, Tokens{}, ErrInvalidCreds
	}
	tokens, err := s.issue(u)
	return u, tokens, err
}

// LoginWithGoogle finds the user by Google ID, links an existing email
// account, or creates a new one. isNew reports the last case. Only verified
// Google emails are accepted.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p GoogleProfile) (u *models.User, tokens Tokens, isNew bool, err error) {
	if !p.EmailVerified {
		return nil, Tokens{}, false, ErrEmailUnverified
	}
	u, err = s.users.GetByGoogleID(ctx, p.ID)
	if err == nil {
		tokens, err = s.issue(u)
		return u, tokens, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Tokens{}, false, err
	}
	email := strings.ToLower(strings.TrimSpace(p.Email))
	gid := p.ID
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.GoogleID = &gid
		if existing.PhotoURL == "" {
			existing.PhotoURL = p.Picture
		}
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, Tokens{}, false, err
		}
		tokens, err = s.issue(existing)
		return existing, tokens, false, err
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, Tokens{}, false, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u = &models.User{
		Email:    email,
		Name:     name,
		GoogleID: &gid,
		PhotoURL: p.Picture,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, Tokens{}, false, err
	}
	tokens, err = s.issue(u)
	return u, tokens, true, err
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Tokens{}, err
		}
		if revoked {
			return Tokens{}, auth.ErrRevokedToken
		}
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Tokens{}, auth.ErrInvalidToken
		}
		return Tokens{}, err
	}
	// refresh tokens are single use
	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, claims.ID, auth.Remaining(claims)); err != nil {
			slog.Error("refresh token not revoked", "component", "auth", "user_id", userID, "err", err)
			return Tokens{}, fmt.Errorf("revoke refresh token: %w", err)
		}
	}
	return s.issue(u)
}

// Logout revokes the access token of the session and the refresh token
// issued with it.
func (s *AuthService) Logout(ctx context.Context, sess *Session) error {
	if sess == nil || s.revoker == nil {
		return nil
	}
	accessTTL := s.cfg.JWT.AccessExpiry
	refreshTTL := s.cfg.JWT.RefreshExpiry
	if !sess.ExpiresAt.IsZero() {
		accessTTL = timeUntil(sess.ExpiresAt)
		refreshTTL = timeUntil(sess.ExpiresAt.Add(s.cfg.JWT.RefreshExpiry - s.cfg.JWT.AccessExpiry))
	}
	if err := s.revoker.Revoke(ctx, sess.TokenID, accessTTL); err != nil {
		return err
	}
	if sess.SessionID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, sess.SessionID, refreshTTL)
}

// CurrentUser resolves the user behind a session; a nil session yields nil.
func (s *AuthService) CurrentUser(ctx context.Context, sess *Session) (*models.User, error) {
	if sess == nil {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *AuthService) issue(u *models.User) (Tokens, error) {
	sid := auth.NewSessionID()
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, sid)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID, sid)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// photoName keeps the upload's extension and replaces the rest with a random ID.
func photoName(filename string) string {
	return "img_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16] + strings.ToLower(path.Ext(filename))
}
