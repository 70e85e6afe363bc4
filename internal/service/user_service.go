package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetmap/config"
	"meetmap/internal/models"

	"gorm.io/gorm"
)

var ErrNameRequired = errors.New("name required")

// UserService covers the signed-in user's own profile.
type UserService struct {
	cfg    *config.Config
	users  UserStore
	photos PhotoUploader
}

func NewUserService(cfg *config.Config, users UserStore, photos PhotoUploader) *UserService {
	return &UserService{cfg: cfg, users: users, photos: photos}
}

func (s *UserService) Profile(ctx context.Context, sess *Session) (*models.User, error) {
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateName changes the display name; blank names are rejected.
func (s *UserService) UpdateName(ctx context.Context, sess *Session, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	u, err := s.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePhoto uploads a new profile photo and stores its URL.
func (s *UserService) UpdatePhoto(ctx context.Context, sess *Session, photo *Photo) (*models.User, error) {
	if photo == nil || photo.Reader == nil {
		return nil, ErrPhotoRequired
	}
	u, err := s.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	url, err := s.photos.UploadImage(ctx, photo.Reader, photo.Size, s.cfg.Media.Folder, photoName(photo.Filename))
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	u.PhotoURL = url
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RegisterFCMToken saves the device token used for push notifications.
func (s *UserService) RegisterFCMToken(ctx context.Context, sess *Session, token string) error {
	u, err := s.Profile(ctx, sess)
	if err != nil {
		return err
	}
	u.FCMToken = token
	return s.users.Update(ctx, u)
}
