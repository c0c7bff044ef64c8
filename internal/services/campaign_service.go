package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/metrics"
)

var (
	// ErrCampaignNotFound indicates the campaign does not exist.
	ErrCampaignNotFound = errors.New("campaign: not found")
	// ErrCampaignClosed signals a donation to a completed or cancelled campaign.
	ErrCampaignClosed = errors.New("campaign: not active")
	// ErrDonationAmount signals a non-positive donation amount.
	ErrDonationAmount = errors.New("campaign: donation amount must be positive")
)

// CampaignInput carries the fields needed to start a campaign.
type CampaignInput struct {
	PetID       string
	Title       string
	Description string
	GoalCents   int64
	Metadata    datatypes.JSON
}

// CampaignUpdate carries optional updates; nil fields are untouched.
type CampaignUpdate struct {
	Title       *string
	Description *string
	GoalCents   *int64
	Metadata    *datatypes.JSON
}

// Donor identifies who donated and an optional public message.
type Donor struct {
	Name    string
	Email   string
	Message string
}

// CampaignListOptions filters the campaign listing.
type CampaignListOptions struct {
	Page      int
	PageSize  int
	ShelterID string
	PetID     string
	Status    string
}

// CampaignService manages fundraising campaigns and their donations.
type CampaignService struct {
	db *gorm.DB
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(db *gorm.DB) (*CampaignService, error) {
	if db == nil {
		return nil, errors.New("campaign service: db is required")
	}
	return &CampaignService{db: db}, nil
}

// Create starts a campaign for the pet. The shelter reference is denormalised
// from the pet.
func (s *CampaignService) Create(ctx context.Context, input CampaignInput) (*models.Campaign, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("campaign service: title is required")
	}
	if input.GoalCents <= 0 {
		return nil, errors.New("campaign service: goal must be positive")
	}

	var pet models.Pet
	if err := s.db.WithContext(ctx).First(&pet, "id = ?", input.PetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("campaign service: load pet: %w", err)
	}

	campaign := models.Campaign{
		PetID:       pet.ID,
		ShelterID:   pet.ShelterID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		GoalCents:   input.GoalCents,
		Metadata:    input.Metadata,
		Status:      models.CampaignStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("campaign service: create campaign: %w", err)
	}

	return &campaign, nil
}

// Get returns a campaign with its pet preloaded.
func (s *CampaignService) Get(ctx context.Context, campaignID string) (*models.Campaign, error) {
	ctx = ensureContext(ctx)

	var campaign models.Campaign
	if err := s.db.WithContext(ctx).Preload("Pet").First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("campaign service: load campaign: %w", err)
	}
	return &campaign, nil
}

// List returns campaigns matching the filters, newest first.
func (s *CampaignService) List(ctx context.Context, opts CampaignListOptions) ([]models.Campaign, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize := clampPage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Campaign{})
	if opts.ShelterID != "" {
		query = query.Where("shelter_id = ?", opts.ShelterID)
	}
	if opts.PetID != "" {
		query = query.Where("pet_id = ?", opts.PetID)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("campaign service: count campaigns: %w", err)
	}

	var campaigns []models.Campaign
	if err := query.
		Preload("Pet").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		return nil, 0, fmt.Errorf("campaign service: list campaigns: %w", err)
	}

	return campaigns, total, nil
}

// Update applies partial changes to an active campaign.
func (s *CampaignService) Update(ctx context.Context, campaignID string, update CampaignUpdate) (*models.Campaign, error) {
	ctx = ensureContext(ctx)

	campaign, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusActive {
		return nil, ErrCampaignClosed
	}

	changes := map[string]any{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, errors.New("campaign service: title cannot be empty")
		}
		changes["title"] = title
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.GoalCents != nil {
		if *update.GoalCents <= 0 {
			return nil, errors.New("campaign service: goal must be positive")
		}
		changes["goal_cents"] = *update.GoalCents
	}
	if update.Metadata != nil {
		changes["metadata"] = *update.Metadata
	}

	if len(changes) == 0 {
		return campaign, nil
	}

	if err := s.db.WithContext(ctx).Model(campaign).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("campaign service: update campaign: %w", err)
	}

	return s.Get(ctx, campaignID)
}

// Cancel closes an active campaign without deleting its donation history.
func (s *CampaignService) Cancel(ctx context.Context, campaignID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaignID, models.CampaignStatusActive).
		Update("status", models.CampaignStatusCancelled)
	if result.Error != nil {
		return fmt.Errorf("campaign service: cancel campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, campaignID); err != nil {
			return err
		}
		return ErrCampaignClosed
	}
	return nil
}

// Donate records a donation and increments the raised total atomically. The
// insert and the increment share a transaction, and the increment is expressed
// in SQL so concurrent donations never lose updates. A campaign whose raised
// total reaches its goal auto-completes in the same transaction.
func (s *CampaignService) Donate(ctx context.Context, campaignID string, donor Donor, amountCents int64) (*models.CampaignDonation, error) {
	ctx = ensureContext(ctx)

	if amountCents <= 0 {
		return nil, ErrDonationAmount
	}
	if strings.TrimSpace(donor.Name) == "" {
		return nil, errors.New("campaign service: donor name is required")
	}

	donation := models.CampaignDonation{
		CampaignID:  campaignID,
		DonorName:   strings.TrimSpace(donor.Name),
		DonorEmail:  normaliseEmail(donor.Email),
		AmountCents: amountCents,
		Message:     donor.Message,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, "id = ?", campaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return fmt.Errorf("campaign service: load campaign: %w", err)
		}
		if campaign.Status != models.CampaignStatusActive {
			return ErrCampaignClosed
		}

		if err := tx.Create(&donation).Error; err != nil {
			return fmt.Errorf("campaign service: create donation: %w", err)
		}

		if err := tx.Model(&models.Campaign{}).
			Where("id = ?", campaignID).
			Update("raised_cents", gorm.Expr("raised_cents + ?", amountCents)).Error; err != nil {
			return fmt.Errorf("campaign service: increment raised total: %w", err)
		}

		if err := tx.Model(&models.Campaign{}).
			Where("id = ? AND status = ? AND raised_cents >= goal_cents", campaignID, models.CampaignStatusActive).
			Update("status", models.CampaignStatusCompleted).Error; err != nil {
			return fmt.Errorf("campaign service: complete campaign: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DonationAmount.Add(float64(amountCents))
	return &donation, nil
}

// Donations lists a campaign's donations, newest first.
func (s *CampaignService) Donations(ctx context.Context, campaignID string, page, pageSize int) ([]models.CampaignDonation, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.CampaignDonation{}).Where("campaign_id = ?", campaignID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("campaign service: count donations: %w", err)
	}

	var donations []models.CampaignDonation
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donations).Error; err != nil {
		return nil, 0, fmt.Errorf("campaign service: list donations: %w", err)
	}

	return donations, total, nil
}

// CompleteGoalReached flips active campaigns whose raised total covers the
// goal to completed. Used by the maintenance sweep as a safety net.
func (s *CampaignService) CompleteGoalReached(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("status = ? AND goal_cents > 0 AND raised_cents >= goal_cents", models.CampaignStatusActive).
		Update("status", models.CampaignStatusCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("campaign service: complete campaigns: %w", result.Error)
	}
	return result.RowsAffected, nil
}
