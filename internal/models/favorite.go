package models

import "time"

// Favorite links a user to one favorited user. The pair is unique, so the
// favorites of a user behave as a set.
type Favorite struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_fav_user_target,unique" json:"user_id"`
	FavoriteUserID uint      `gorm:"not null;index:idx_fav_user_target,unique" json:"favorite_user_id"`
	CreatedAt      time.Time `json:"created_at"`

	FavoriteUser User `gorm:"foreignKey:FavoriteUserID" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}
