package repository

import (
	"context"

	"meetmap/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Location").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs returns the users that still exist among ids, in ids order.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.User
	err := r.db.WithContext(ctx).Preload("Location").Where("id IN ?", ids).Find(&list).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(list))
	for _, u := range list {
		byID[u.ID] = u
	}
	out := make([]models.User, 0, len(list))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// ListOthers returns every user except excludeID, with or without a location.
func (r *UserRepository) ListOthers(ctx context.Context, excludeID uint) ([]models.User, error) {
	var list []models.User
	err := r.db.WithContext(ctx).Preload("Location").Where("id <> ?", excludeID).Order("id").Find(&list).Error
	return list, err
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Omit("Location").Save(u).Error
}
