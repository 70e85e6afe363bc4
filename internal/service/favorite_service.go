package service

import (
	"context"
	"errors"
	"log/slog"

	"meetmap/internal/metrics"
	"meetmap/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSelfFavorite = errors.New("cannot favorite yourself")
	ErrUserNotFound = errors.New("user not found")
)

// FavoriteService manages a user's set of favorited users. Adding a present
// identity or removing an absent one is a no-op.
type FavoriteService struct {
	favorites FavoriteStore
	users     UserStore
	notifier  Notifier
}

func NewFavoriteService(favorites FavoriteStore, users UserStore, notifier Notifier) *FavoriteService {
	return &FavoriteService{favorites: favorites, users: users, notifier: notifier}
}

// Add reports created=false when targetID was already a favorite.
func (s *FavoriteService) Add(ctx context.Context, sess *Session, targetID uint) (bool, error) {
	if targetID == sess.UserID {
		return false, ErrSelfFavorite
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	created, err := s.favorites.Add(ctx, sess.UserID, targetID)
	if err != nil || !created {
		return false, err
	}
	metrics.FavoriteChanges.WithLabelValues("add").Inc()
	s.notifyFavorited(ctx, sess, target)
	return true, nil
}

func (s *FavoriteService) Remove(ctx context.Context, sess *Session, targetID uint) error {
	removed, err := s.favorites.Remove(ctx, sess.UserID, targetID)
	if err != nil {
		return err
	}
	if removed {
		metrics.FavoriteChanges.WithLabelValues("remove").Inc()
	}
	return nil
}

// List returns the favorited users that still exist, oldest favorite first.
func (s *FavoriteService) List(ctx context.Context, sess *Session) ([]models.User, error) {
	ids, err := s.favorites.ListIDs(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.users.GetByIDs(ctx, ids)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, sess *Session, targetID uint) (bool, error) {
	return s.favorites.IsFavorite(ctx, sess.UserID, targetID)
}

func (s *FavoriteService) notifyFavorited(ctx context.Context, sess *Session, target *models.User) {
	if s.notifier == nil || target.FCMToken == "" {
		return
	}
	by, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		slog.Warn("favorite push skipped", "component", "favorites", "user_id", sess.UserID, "err", err)
		return
	}
	if err := s.notifier.NotifyFavorited(ctx, target, by); err != nil {
		slog.Warn("favorite push failed", "component", "favorites", "target_id", target.ID, "err", err)
	}
}
