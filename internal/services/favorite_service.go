package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
)

// FavoriteService manages per-user pet bookmarks.
type FavoriteService struct {
	db *gorm.DB
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(db *gorm.DB) (*FavoriteService, error) {
	if db == nil {
		return nil, errors.New("favorite service: db is required")
	}
	return &FavoriteService{db: db}, nil
}

// Add bookmarks the pet for the user. Adding twice is a no-op thanks to the
// composite unique index.
func (s *FavoriteService) Add(ctx context.Context, userID, petID string) error {
	ctx = ensureContext(ctx)

	if userID == "" || petID == "" {
		return errors.New("favorite service: user id and pet id are required")
	}

	var pet models.Pet
	if err := s.db.WithContext(ctx).Select("id").First(&pet, "id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPetNotFound
		}
		return fmt.Errorf("favorite service: load pet: %w", err)
	}

	favorite := models.Favorite{UserID: userID, PetID: petID}
	if err := s.db.WithContext(ctx).Create(&favorite).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return fmt.Errorf("favorite service: create favorite: %w", err)
	}
	return nil
}

// Remove deletes the bookmark. Removing a missing bookmark is a no-op.
func (s *FavoriteService) Remove(ctx context.Context, userID, petID string) error {
	ctx = ensureContext(ctx)

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND pet_id = ?", userID, petID).
		Delete(&models.Favorite{}).Error; err != nil {
		return fmt.Errorf("favorite service: delete favorite: %w", err)
	}
	return nil
}

// List returns the user's bookmarked pets, newest bookmark first.
func (s *FavoriteService) List(ctx context.Context, userID string, page, pageSize int) ([]models.Favorite, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("favorite service: count favorites: %w", err)
	}

	var favorites []models.Favorite
	if err := query.
		Preload("Pet").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&favorites).Error; err != nil {
		return nil, 0, fmt.Errorf("favorite service: list favorites: %w", err)
	}

	return favorites, total, nil
}
