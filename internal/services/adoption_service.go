package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/mail"
	"github.com/pawhaven/pawhaven/pkg/metrics"
)

var (
	// ErrAdoptionNotFound indicates the adoption request does not exist.
	ErrAdoptionNotFound = errors.New("adoption: not found")
	// ErrAdoptionInvalidStatus signals an unknown target status.
	ErrAdoptionInvalidStatus = errors.New("adoption: invalid status")
	// ErrAdoptionTransition signals a move the transition table forbids.
	ErrAdoptionTransition = errors.New("adoption: transition not allowed")
	// ErrPetNotAdoptable signals the pet no longer accepts applications.
	ErrPetNotAdoptable = errors.New("adoption: pet not adoptable")
)

// AdoptionApplication carries applicant details for a submission.
type AdoptionApplication struct {
	ApplicantUserID *string
	FullName        string
	Email           string
	Phone           string
	Household       string
	Message         string
}

// AdoptionListOptions filters staff and admin listings.
type AdoptionListOptions struct {
	Page      int
	PageSize  int
	ShelterID string
	PetID     string
	Status    string
	Query     string
}

// AdoptionService manages adoption requests through their review lifecycle.
type AdoptionService struct {
	db     *gorm.DB
	mailer mail.Mailer
	audit  *AuditService
}

// NewAdoptionService constructs an AdoptionService.
func NewAdoptionService(db *gorm.DB, mailer mail.Mailer, audit *AuditService) (*AdoptionService, error) {
	if db == nil {
		return nil, errors.New("adoption service: db is required")
	}
	return &AdoptionService{db: db, mailer: mailer, audit: audit}, nil
}

// Submit files an adoption request for the pet. The shelter reference is
// denormalised from the pet at submission time.
func (s *AdoptionService) Submit(ctx context.Context, petID string, app AdoptionApplication) (*models.AdoptionRequest, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(app.FullName) == "" {
		return nil, errors.New("adoption service: full name is required")
	}
	email := normaliseEmail(app.Email)
	if email == "" {
		return nil, errors.New("adoption service: email is required")
	}

	var pet models.Pet
	if err := s.db.WithContext(ctx).First(&pet, "id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("adoption service: load pet: %w", err)
	}
	if !pet.Adoptable() {
		return nil, ErrPetNotAdoptable
	}

	request := models.AdoptionRequest{
		PetID:           pet.ID,
		ShelterID:       pet.ShelterID,
		ApplicantUserID: app.ApplicantUserID,
		FullName:        strings.TrimSpace(app.FullName),
		Email:           email,
		Phone:           strings.TrimSpace(app.Phone),
		Household:       app.Household,
		Message:         app.Message,
		Status:          models.AdoptionStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("adoption service: create request: %w", err)
	}

	metrics.AdoptionRequests.WithLabelValues(models.AdoptionStatusPending).Inc()
	return &request, nil
}

// Get returns a request with pet and shelter preloaded.
func (s *AdoptionService) Get(ctx context.Context, requestID string) (*models.AdoptionRequest, error) {
	ctx = ensureContext(ctx)

	var request models.AdoptionRequest
	if err := s.db.WithContext(ctx).
		Preload("Pet").
		Preload("Shelter").
		First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdoptionNotFound
		}
		return nil, fmt.Errorf("adoption service: load request: %w", err)
	}
	return &request, nil
}

// Transition moves a request to a new status under the forward-only table.
// Approving flips the pet to pending, completing flips it to adopted; the
// request update and the pet flip commit together.
func (s *AdoptionService) Transition(ctx context.Context, requestID, newStatus, notes, reviewerID string) (*models.AdoptionRequest, error) {
	ctx = ensureContext(ctx)

	if !models.ValidAdoptionStatus(newStatus) {
		return nil, ErrAdoptionInvalidStatus
	}

	var request models.AdoptionRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdoptionNotFound
			}
			return fmt.Errorf("adoption service: load request: %w", err)
		}

		if !models.CanTransitionAdoption(request.Status, newStatus) {
			return ErrAdoptionTransition
		}

		changes := map[string]any{
			"status":         newStatus,
			"decision_notes": notes,
			"reviewed_by":    reviewerID,
		}
		result := tx.Model(&models.AdoptionRequest{}).
			Where("id = ? AND status = ?", requestID, request.Status).
			Updates(changes)
		if result.Error != nil {
			return fmt.Errorf("adoption service: update request: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrAdoptionTransition
		}

		switch newStatus {
		case models.AdoptionStatusApproved:
			if err := tx.Model(&models.Pet{}).
				Where("id = ?", request.PetID).
				Update("status", models.PetStatusPending).Error; err != nil {
				return fmt.Errorf("adoption service: mark pet pending: %w", err)
			}
		case models.AdoptionStatusCompleted:
			if err := tx.Model(&models.Pet{}).
				Where("id = ?", request.PetID).
				Update("status", models.PetStatusAdopted).Error; err != nil {
				return fmt.Errorf("adoption service: mark pet adopted: %w", err)
			}
		}

		request.Status = newStatus
		request.DecisionNotes = notes
		request.ReviewedBy = &reviewerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AdoptionRequests.WithLabelValues(newStatus).Inc()

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &reviewerID,
		Action:   "adoption.transition",
		Resource: requestID,
		Result:   "success",
		Metadata: map[string]any{"status": newStatus},
	})

	s.notifyDecision(ctx, &request)
	return &request, nil
}

// Cancel removes a request. Callers enforce that only the applicant or a
// platform admin may reach this.
func (s *AdoptionService) Cancel(ctx context.Context, requestID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.AdoptionRequest{}, "id = ?", requestID)
	if result.Error != nil {
		return fmt.Errorf("adoption service: cancel request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdoptionNotFound
	}
	return nil
}

// List returns requests matching the filters, newest first.
func (s *AdoptionService) List(ctx context.Context, opts AdoptionListOptions) ([]models.AdoptionRequest, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize := clampPage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.AdoptionRequest{})
	if opts.ShelterID != "" {
		query = query.Where("shelter_id = ?", opts.ShelterID)
	}
	if opts.PetID != "" {
		query = query.Where("pet_id = ?", opts.PetID)
	}
	if opts.Status != "" {
		if !models.ValidAdoptionStatus(opts.Status) {
			return nil, 0, ErrAdoptionInvalidStatus
		}
		query = query.Where("status = ?", opts.Status)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(message) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("adoption service: count requests: %w", err)
	}

	var requests []models.AdoptionRequest
	if err := query.
		Preload("Pet").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("adoption service: list requests: %w", err)
	}

	return requests, total, nil
}

// notifyDecision emails the applicant about approval or rejection. Delivery
// failures are swallowed; the transition already committed.
func (s *AdoptionService) notifyDecision(ctx context.Context, request *models.AdoptionRequest) {
	if s.mailer == nil {
		return
	}

	var subject, body string
	switch request.Status {
	case models.AdoptionStatusApproved:
		subject = "Your adoption request was approved"
		body = fmt.Sprintf("Hello %s,\n\nGood news: your adoption request has been approved. The shelter will contact you to arrange the next steps.\n", request.FullName)
	case models.AdoptionStatusRejected:
		subject = "Update on your adoption request"
		body = fmt.Sprintf("Hello %s,\n\nUnfortunately your adoption request was not approved this time.\n\nNotes: %s\n", request.FullName, request.DecisionNotes)
	default:
		return
	}

	_ = s.mailer.Send(ctx, mail.Message{
		To:      []string{request.Email},
		Subject: subject,
		Body:    body,
	})
}
