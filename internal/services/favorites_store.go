// internal/services/favorites_store.go
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/models"
)

// FavoritesStore answers which furniture a user has favorited. Favorites are
// written elsewhere; the catalog only reads them.
type FavoritesStore interface {
	FavoriteIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormFavoritesStore struct {
	db *gorm.DB
}

func NewFavoritesStore(db *gorm.DB) FavoritesStore {
	return &gormFavoritesStore{db: db}
}

func (s *gormFavoritesStore) FavoriteIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("furniture_id").
		Pluck("furniture_id", &ids).Error
	return ids, err
}
