package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/metrics"
)

var (
	// ErrSlotNotFound indicates the vet slot does not exist.
	ErrSlotNotFound = errors.New("booking: slot not found")
	// ErrSlotTaken signals the slot was claimed by someone else first.
	ErrSlotTaken = errors.New("booking: slot already booked")
	// ErrBookingNotFound indicates no booking matches the request.
	ErrBookingNotFound = errors.New("booking: not found")
)

// SlotInput carries the fields needed to publish a vet slot.
type SlotInput struct {
	VetName  string
	StartsAt time.Time
}

// BookingService manages vet slots and their bookings.
type BookingService struct {
	db *gorm.DB
}

// NewBookingService constructs a BookingService.
func NewBookingService(db *gorm.DB) (*BookingService, error) {
	if db == nil {
		return nil, errors.New("booking service: db is required")
	}
	return &BookingService{db: db}, nil
}

// CreateSlot publishes an open vet slot for the shelter.
func (s *BookingService) CreateSlot(ctx context.Context, shelterID string, input SlotInput) (*models.VetSlot, error) {
	ctx = ensureContext(ctx)

	if shelterID == "" {
		return nil, errors.New("booking service: shelter id is required")
	}
	if strings.TrimSpace(input.VetName) == "" {
		return nil, errors.New("booking service: vet name is required")
	}
	if input.StartsAt.IsZero() {
		return nil, errors.New("booking service: start time is required")
	}

	slot := models.VetSlot{
		ShelterID: shelterID,
		VetName:   strings.TrimSpace(input.VetName),
		StartsAt:  input.StartsAt,
		Status:    models.SlotStatusOpen,
	}

	if err := s.db.WithContext(ctx).Create(&slot).Error; err != nil {
		return nil, fmt.Errorf("booking service: create slot: %w", err)
	}

	return &slot, nil
}

// ListSlots returns the shelter's slots from the given time onward.
func (s *BookingService) ListSlots(ctx context.Context, shelterID string, from time.Time, page, pageSize int) ([]models.VetSlot, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.VetSlot{}).Where("shelter_id = ?", shelterID)
	if !from.IsZero() {
		query = query.Where("starts_at >= ?", from)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: count slots: %w", err)
	}

	var slots []models.VetSlot
	if err := query.
		Order("starts_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&slots).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: list slots: %w", err)
	}

	return slots, total, nil
}

// GetSlot returns a vet slot by id.
func (s *BookingService) GetSlot(ctx context.Context, slotID string) (*models.VetSlot, error) {
	ctx = ensureContext(ctx)

	var slot models.VetSlot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("booking service: load slot: %w", err)
	}
	return &slot, nil
}

// CloseSlot withdraws an open slot from booking.
func (s *BookingService) CloseSlot(ctx context.Context, slotID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.VetSlot{}).
		Where("id = ? AND status = ?", slotID, models.SlotStatusOpen).
		Update("status", models.SlotStatusClosed)
	if result.Error != nil {
		return fmt.Errorf("booking service: close slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var slot models.VetSlot
		if err := s.db.WithContext(ctx).First(&slot, "id = ?", slotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("booking service: load slot: %w", err)
		}
		return ErrSlotTaken
	}
	return nil
}

// Book claims the slot for the user. The claim is a single conditional update
// on the open status; whoever flips the row wins and everyone else observes
// RowsAffected zero. The unique index on bookings.slot_id backstops the claim.
func (s *BookingService) Book(ctx context.Context, slotID, userID string, petID *string, notes string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, errors.New("booking service: user id is required")
	}

	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.VetSlot{}).
			Where("id = ? AND status = ?", slotID, models.SlotStatusOpen).
			Update("status", models.SlotStatusBooked)
		if result.Error != nil {
			return fmt.Errorf("booking service: claim slot: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var slot models.VetSlot
			if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSlotNotFound
				}
				return fmt.Errorf("booking service: load slot: %w", err)
			}
			return ErrSlotTaken
		}

		booking = models.Booking{
			SlotID: slotID,
			UserID: userID,
			PetID:  petID,
			Notes:  notes,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("booking service: create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			metrics.BookingConflicts.Inc()
		}
		return nil, err
	}

	return &booking, nil
}

// CancelBooking releases the slot. Only the booking's user or an admin should
// reach this; callers enforce that.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, "id = ?", bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("booking service: load booking: %w", err)
		}

		if err := tx.Delete(&booking).Error; err != nil {
			return fmt.Errorf("booking service: delete booking: %w", err)
		}

		if err := tx.Model(&models.VetSlot{}).
			Where("id = ? AND status = ?", booking.SlotID, models.SlotStatusBooked).
			Update("status", models.SlotStatusOpen).Error; err != nil {
			return fmt.Errorf("booking service: release slot: %w", err)
		}
		return nil
	})
}

// ListBookings returns the user's bookings with slots preloaded.
func (s *BookingService) ListBookings(ctx context.Context, userID string, page, pageSize int) ([]models.Booking, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: count bookings: %w", err)
	}

	var bookings []models.Booking
	if err := query.
		Preload("Slot").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("booking service: list bookings: %w", err)
	}

	return bookings, total, nil
}

// GetBooking returns a booking with its slot preloaded.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Slot").First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking service: load booking: %w", err)
	}
	return &booking, nil
}
