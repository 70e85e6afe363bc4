package repository

import (
	"context"

	"meetmap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add inserts the pair; created is false when it was already present.
func (r *FavoriteRepository) Add(ctx context.Context, userID, targetID uint) (created bool, err error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Favorite{UserID: userID, FavoriteUserID: targetID})
	return res.RowsAffected > 0, res.Error
}

// Remove deletes the pair; removed is false when it was absent.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, targetID uint) (removed bool, err error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND favorite_user_id = ?", userID, targetID).Delete(&models.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (r *FavoriteRepository) IsFavorite(ctx context.Context, userID, targetID uint) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND favorite_user_id = ?", userID, targetID).Count(&c).Error
	return c > 0, err
}

// ListIDs returns favorited user IDs, oldest first.
func (r *FavoriteRepository) ListIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID).
		Order("created_at, id").Pluck("favorite_user_id", &ids).Error
	return ids, err
}
