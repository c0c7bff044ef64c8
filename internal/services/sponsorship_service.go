package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
)

var (
	// ErrSponsorshipNotFound indicates the sponsorship does not exist.
	ErrSponsorshipNotFound = errors.New("sponsorship: not found")
	// ErrSponsorshipCancelled signals an operation on an already-cancelled pledge.
	ErrSponsorshipCancelled = errors.New("sponsorship: already cancelled")
)

// SponsorshipService manages monthly pet sponsorship pledges.
type SponsorshipService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSponsorshipService constructs a SponsorshipService.
func NewSponsorshipService(db *gorm.DB) (*SponsorshipService, error) {
	if db == nil {
		return nil, errors.New("sponsorship service: db is required")
	}
	return &SponsorshipService{db: db, now: time.Now}, nil
}

// Create starts a monthly pledge from the user towards the pet.
func (s *SponsorshipService) Create(ctx context.Context, userID, petID string, monthlyCents int64) (*models.Sponsorship, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, errors.New("sponsorship service: user id is required")
	}
	if monthlyCents <= 0 {
		return nil, errors.New("sponsorship service: monthly amount must be positive")
	}

	var pet models.Pet
	if err := s.db.WithContext(ctx).First(&pet, "id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("sponsorship service: load pet: %w", err)
	}

	sponsorship := models.Sponsorship{
		UserID:       userID,
		PetID:        pet.ID,
		MonthlyCents: monthlyCents,
		Status:       models.SponsorshipStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&sponsorship).Error; err != nil {
		return nil, fmt.Errorf("sponsorship service: create sponsorship: %w", err)
	}

	return &sponsorship, nil
}

// Get returns a sponsorship with its pet preloaded.
func (s *SponsorshipService) Get(ctx context.Context, sponsorshipID string) (*models.Sponsorship, error) {
	ctx = ensureContext(ctx)

	var sponsorship models.Sponsorship
	if err := s.db.WithContext(ctx).Preload("Pet").First(&sponsorship, "id = ?", sponsorshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSponsorshipNotFound
		}
		return nil, fmt.Errorf("sponsorship service: load sponsorship: %w", err)
	}
	return &sponsorship, nil
}

// ListByUser returns the user's sponsorships, newest first.
func (s *SponsorshipService) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Sponsorship, int64, error) {
	return s.list(ctx, "user_id = ?", userID, page, pageSize)
}

// ListByPet returns a pet's sponsorships, newest first.
func (s *SponsorshipService) ListByPet(ctx context.Context, petID string, page, pageSize int) ([]models.Sponsorship, int64, error) {
	return s.list(ctx, "pet_id = ?", petID, page, pageSize)
}

func (s *SponsorshipService) list(ctx context.Context, cond, value string, page, pageSize int) ([]models.Sponsorship, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Sponsorship{}).Where(cond, value)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("sponsorship service: count sponsorships: %w", err)
	}

	var sponsorships []models.Sponsorship
	if err := query.
		Preload("Pet").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sponsorships).Error; err != nil {
		return nil, 0, fmt.Errorf("sponsorship service: list sponsorships: %w", err)
	}

	return sponsorships, total, nil
}

// Cancel ends an active pledge and stamps the cancellation time.
func (s *SponsorshipService) Cancel(ctx context.Context, sponsorshipID string) error {
	ctx = ensureContext(ctx)

	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.Sponsorship{}).
		Where("id = ? AND status = ?", sponsorshipID, models.SponsorshipStatusActive).
		Updates(map[string]any{
			"status":       models.SponsorshipStatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("sponsorship service: cancel sponsorship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var sponsorship models.Sponsorship
		if err := s.db.WithContext(ctx).First(&sponsorship, "id = ?", sponsorshipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSponsorshipNotFound
			}
			return fmt.Errorf("sponsorship service: load sponsorship: %w", err)
		}
		return ErrSponsorshipCancelled
	}
	return nil
}
