package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
)

// ErrPetNotFound indicates the pet does not exist.
var ErrPetNotFound = errors.New("pet: not found")

// PetInput carries the fields needed to create a pet listing.
type PetInput struct {
	Name        string
	Species     string
	Breed       string
	AgeMonths   int
	Size        string
	Sex         string
	Description string
	Vaccinated  bool
	Sterilized  bool
	Photos      datatypes.JSON
}

// PetUpdate carries optional updates; nil fields are untouched.
type PetUpdate struct {
	Name        *string
	Species     *string
	Breed       *string
	AgeMonths   *int
	Size        *string
	Sex         *string
	Description *string
	Vaccinated  *bool
	Sterilized  *bool
	Photos      *datatypes.JSON
	Status      *string
}

// PetListOptions filters the public pet catalogue.
type PetListOptions struct {
	Page      int
	PageSize  int
	ShelterID string
	Species   string
	Size      string
	City      string
	Status    string
	MaxAge    int
	Query     string
}

// PetService manages pet listings.
type PetService struct {
	db *gorm.DB
}

// NewPetService constructs a PetService.
func NewPetService(db *gorm.DB) (*PetService, error) {
	if db == nil {
		return nil, errors.New("pet service: db is required")
	}
	return &PetService{db: db}, nil
}

// Create adds a pet listing under the shelter.
func (s *PetService) Create(ctx context.Context, shelterID string, input PetInput) (*models.Pet, error) {
	ctx = ensureContext(ctx)

	if shelterID == "" {
		return nil, errors.New("pet service: shelter id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("pet service: name is required")
	}
	if strings.TrimSpace(input.Species) == "" {
		return nil, errors.New("pet service: species is required")
	}

	pet := models.Pet{
		ShelterID:   shelterID,
		Name:        strings.TrimSpace(input.Name),
		Species:     strings.ToLower(strings.TrimSpace(input.Species)),
		Breed:       strings.TrimSpace(input.Breed),
		AgeMonths:   input.AgeMonths,
		Size:        input.Size,
		Sex:         input.Sex,
		Description: input.Description,
		Vaccinated:  input.Vaccinated,
		Sterilized:  input.Sterilized,
		Photos:      input.Photos,
		Status:      models.PetStatusAvailable,
	}

	if err := s.db.WithContext(ctx).Create(&pet).Error; err != nil {
		return nil, fmt.Errorf("pet service: create pet: %w", err)
	}

	return &pet, nil
}

// Get returns a pet with its shelter preloaded.
func (s *PetService) Get(ctx context.Context, petID string) (*models.Pet, error) {
	ctx = ensureContext(ctx)

	var pet models.Pet
	if err := s.db.WithContext(ctx).Preload("Shelter").First(&pet, "id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("pet service: load pet: %w", err)
	}
	return &pet, nil
}

// List returns pets matching the filters. Without an explicit status the
// catalogue hides inactive and adopted pets.
func (s *PetService) List(ctx context.Context, opts PetListOptions) ([]models.Pet, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize := clampPage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Pet{})
	if opts.ShelterID != "" {
		query = query.Where("shelter_id = ?", opts.ShelterID)
	}
	if opts.Species != "" {
		query = query.Where("species = ?", strings.ToLower(opts.Species))
	}
	if opts.Size != "" {
		query = query.Where("size = ?", opts.Size)
	}
	if opts.MaxAge > 0 {
		query = query.Where("age_months <= ?", opts.MaxAge)
	}
	if opts.City != "" {
		query = query.Joins("JOIN shelters ON shelters.id = pets.shelter_id").
			Where("shelters.city = ?", opts.City)
	}
	if opts.Status != "" {
		query = query.Where("pets.status = ?", opts.Status)
	} else {
		query = query.Where("pets.status IN ?", []string{models.PetStatusAvailable, models.PetStatusPending})
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(pets.name) LIKE ? OR LOWER(pets.breed) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("pet service: count pets: %w", err)
	}

	var pets []models.Pet
	if err := query.
		Order("pets.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pets).Error; err != nil {
		return nil, 0, fmt.Errorf("pet service: list pets: %w", err)
	}

	return pets, total, nil
}

// Update applies partial changes to a pet listing.
func (s *PetService) Update(ctx context.Context, petID string, update PetUpdate) (*models.Pet, error) {
	ctx = ensureContext(ctx)

	pet, err := s.Get(ctx, petID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.New("pet service: name cannot be empty")
		}
		changes["name"] = name
	}
	if update.Species != nil {
		changes["species"] = strings.ToLower(strings.TrimSpace(*update.Species))
	}
	if update.Breed != nil {
		changes["breed"] = strings.TrimSpace(*update.Breed)
	}
	if update.AgeMonths != nil {
		changes["age_months"] = *update.AgeMonths
	}
	if update.Size != nil {
		changes["size"] = *update.Size
	}
	if update.Sex != nil {
		changes["sex"] = *update.Sex
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Vaccinated != nil {
		changes["vaccinated"] = *update.Vaccinated
	}
	if update.Sterilized != nil {
		changes["sterilized"] = *update.Sterilized
	}
	if update.Photos != nil {
		changes["photos"] = *update.Photos
	}
	if update.Status != nil {
		switch *update.Status {
		case models.PetStatusAvailable, models.PetStatusPending, models.PetStatusAdopted, models.PetStatusInactive:
			changes["status"] = *update.Status
		default:
			return nil, fmt.Errorf("pet service: invalid status %q", *update.Status)
		}
	}

	if len(changes) == 0 {
		return pet, nil
	}

	if err := s.db.WithContext(ctx).Model(pet).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("pet service: update pet: %w", err)
	}

	return s.Get(ctx, petID)
}

// Deactivate retires a listing without deleting its history.
func (s *PetService) Deactivate(ctx context.Context, petID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Pet{}).
		Where("id = ?", petID).
		Update("status", models.PetStatusInactive)
	if result.Error != nil {
		return fmt.Errorf("pet service: deactivate pet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPetNotFound
	}
	return nil
}
