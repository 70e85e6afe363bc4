package repository

import (
	"context"

	"meetmap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert overwrites the user's single location row.
func (r *LocationRepository) Upsert(ctx context.Context, loc *models.UserLocation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "last_updated_at", "updated_at"}),
	}).Create(loc).Error
}

func (r *LocationRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserLocation, error) {
	var loc models.UserLocation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListAll returns every stored location; used to seed the live map.
func (r *LocationRepository) ListAll(ctx context.Context) ([]models.UserLocation, error) {
	var list []models.UserLocation
	err := r.db.WithContext(ctx).Order("user_id").Find(&list).Error
	return list, err
}
