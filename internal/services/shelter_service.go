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

var (
	// ErrShelterNotFound indicates the shelter does not exist.
	ErrShelterNotFound = errors.New("shelter: not found")
	// ErrShelterNotPending signals a moderation decision on an already-decided shelter.
	ErrShelterNotPending = errors.New("shelter: not pending review")
	// ErrMemberNotFound indicates no membership row matches the request.
	ErrMemberNotFound = errors.New("shelter: member not found")
	// ErrLastOwner guards against removing or demoting a shelter's only owner.
	ErrLastOwner = errors.New("shelter: cannot remove the last owner")
)

// ShelterApplication carries the fields needed to register a shelter.
type ShelterApplication struct {
	Name        string
	Description string
	Email       string
	Phone       string
	Website     string
	Address     string
	City        string
	Country     string
	Contact     datatypes.JSON
}

// ShelterUpdate carries optional profile updates; nil fields are untouched.
type ShelterUpdate struct {
	Name        *string
	Description *string
	Email       *string
	Phone       *string
	Website     *string
	Address     *string
	City        *string
	Country     *string
	Contact     *datatypes.JSON
}

// ShelterListOptions filters the public shelter directory.
type ShelterListOptions struct {
	Page     int
	PageSize int
	City     string
	Status   string
	Query    string
}

// ShelterService manages shelter registration, moderation and membership.
type ShelterService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewShelterService constructs a ShelterService.
func NewShelterService(db *gorm.DB, audit *AuditService) (*ShelterService, error) {
	if db == nil {
		return nil, errors.New("shelter service: db is required")
	}
	return &ShelterService{db: db, audit: audit}, nil
}

// Apply registers a new shelter in pending review and makes the applicant its
// owner in the same transaction.
func (s *ShelterService) Apply(ctx context.Context, userID string, app ShelterApplication) (*models.Shelter, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, errors.New("shelter service: user id is required")
	}
	if strings.TrimSpace(app.Name) == "" {
		return nil, errors.New("shelter service: name is required")
	}
	email := normaliseEmail(app.Email)
	if email == "" {
		return nil, errors.New("shelter service: email is required")
	}

	shelter := models.Shelter{
		Name:        strings.TrimSpace(app.Name),
		Description: app.Description,
		Email:       email,
		Phone:       strings.TrimSpace(app.Phone),
		Website:     strings.TrimSpace(app.Website),
		Address:     app.Address,
		City:        strings.TrimSpace(app.City),
		Country:     strings.TrimSpace(app.Country),
		Contact:     app.Contact,
		Status:      models.ShelterStatusPendingReview,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shelter).Error; err != nil {
			return fmt.Errorf("shelter service: create shelter: %w", err)
		}
		owner := models.ShelterMember{
			ShelterID: shelter.ID,
			UserID:    userID,
			Role:      models.ShelterRoleOwner,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("shelter service: create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "shelter.apply",
		Resource: shelter.ID,
		Result:   "success",
	})

	return &shelter, nil
}

// Get returns a shelter by id.
func (s *ShelterService) Get(ctx context.Context, shelterID string) (*models.Shelter, error) {
	ctx = ensureContext(ctx)

	var shelter models.Shelter
	if err := s.db.WithContext(ctx).First(&shelter, "id = ?", shelterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelterNotFound
		}
		return nil, fmt.Errorf("shelter service: load shelter: %w", err)
	}
	return &shelter, nil
}

// List returns shelters matching the options. Public callers should pass
// Status verified; admins may pass any status or none.
func (s *ShelterService) List(ctx context.Context, opts ShelterListOptions) ([]models.Shelter, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize := clampPage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Shelter{})
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.City != "" {
		query = query.Where("city = ?", opts.City)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("shelter service: count shelters: %w", err)
	}

	var shelters []models.Shelter
	if err := query.
		Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&shelters).Error; err != nil {
		return nil, 0, fmt.Errorf("shelter service: list shelters: %w", err)
	}

	return shelters, total, nil
}

// Update applies partial profile changes to the shelter.
func (s *ShelterService) Update(ctx context.Context, shelterID string, update ShelterUpdate) (*models.Shelter, error) {
	ctx = ensureContext(ctx)

	shelter, err := s.Get(ctx, shelterID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.New("shelter service: name cannot be empty")
		}
		changes["name"] = name
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Email != nil {
		email := normaliseEmail(*update.Email)
		if email == "" {
			return nil, errors.New("shelter service: email cannot be empty")
		}
		changes["email"] = email
	}
	if update.Phone != nil {
		changes["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.Website != nil {
		changes["website"] = strings.TrimSpace(*update.Website)
	}
	if update.Address != nil {
		changes["address"] = *update.Address
	}
	if update.City != nil {
		changes["city"] = strings.TrimSpace(*update.City)
	}
	if update.Country != nil {
		changes["country"] = strings.TrimSpace(*update.Country)
	}
	if update.Contact != nil {
		changes["contact"] = *update.Contact
	}

	if len(changes) == 0 {
		return shelter, nil
	}

	if err := s.db.WithContext(ctx).Model(shelter).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("shelter service: update shelter: %w", err)
	}

	return s.Get(ctx, shelterID)
}

// Verify approves a pending shelter. Only pending shelters can be decided.
func (s *ShelterService) Verify(ctx context.Context, shelterID, adminID, notes string) (*models.Shelter, error) {
	return s.moderate(ctx, shelterID, adminID, notes, models.ShelterStatusVerified, "shelter.verify")
}

// Reject declines a pending shelter with moderation notes.
func (s *ShelterService) Reject(ctx context.Context, shelterID, adminID, notes string) (*models.Shelter, error) {
	return s.moderate(ctx, shelterID, adminID, notes, models.ShelterStatusRejected, "shelter.reject")
}

func (s *ShelterService) moderate(ctx context.Context, shelterID, adminID, notes, status, action string) (*models.Shelter, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Shelter{}).
		Where("id = ? AND status = ?", shelterID, models.ShelterStatusPendingReview).
		Updates(map[string]any{"status": status, "moderation_notes": notes})
	if result.Error != nil {
		return nil, fmt.Errorf("shelter service: moderate shelter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, shelterID); err != nil {
			return nil, err
		}
		return nil, ErrShelterNotPending
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &adminID,
		Action:   action,
		Resource: shelterID,
		Result:   "success",
		Metadata: map[string]any{"notes": notes},
	})

	return s.Get(ctx, shelterID)
}

// Members returns the shelter's membership with users preloaded.
func (s *ShelterService) Members(ctx context.Context, shelterID string) ([]models.ShelterMember, error) {
	ctx = ensureContext(ctx)

	var members []models.ShelterMember
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("shelter_id = ?", shelterID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("shelter service: list members: %w", err)
	}
	return members, nil
}

// UpdateMemberRole changes a member's role. Demoting the last owner is
// rejected so every shelter always has at least one owner.
func (s *ShelterService) UpdateMemberRole(ctx context.Context, shelterID, memberUserID string, role models.ShelterRole, actorID string) (*models.ShelterMember, error) {
	ctx = ensureContext(ctx)

	if !role.Valid() {
		return nil, fmt.Errorf("shelter service: invalid role %q", role)
	}

	var member models.ShelterMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shelter_id = ? AND user_id = ?", shelterID, memberUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("shelter service: load member: %w", err)
		}

		if member.Role == models.ShelterRoleOwner && role != models.ShelterRoleOwner {
			owners, err := s.countOwners(tx, shelterID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		if err := tx.Model(&member).Update("role", role).Error; err != nil {
			return fmt.Errorf("shelter service: update member role: %w", err)
		}
		member.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "shelter.member.role",
		Resource: shelterID,
		Result:   "success",
		Metadata: map[string]any{"member": memberUserID, "role": string(role)},
	})

	return &member, nil
}

// RemoveMember deletes the membership row. Removing the last owner is rejected.
func (s *ShelterService) RemoveMember(ctx context.Context, shelterID, memberUserID, actorID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.ShelterMember
		if err := tx.Where("shelter_id = ? AND user_id = ?", shelterID, memberUserID).
			First(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("shelter service: load member: %w", err)
		}

		if member.Role == models.ShelterRoleOwner {
			owners, err := s.countOwners(tx, shelterID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastOwner
			}
		}

		if err := tx.Delete(&member).Error; err != nil {
			return fmt.Errorf("shelter service: remove member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "shelter.member.remove",
		Resource: shelterID,
		Result:   "success",
		Metadata: map[string]any{"member": memberUserID},
	})

	return nil
}

func (s *ShelterService) countOwners(tx *gorm.DB, shelterID string) (int64, error) {
	var owners int64
	if err := tx.Model(&models.ShelterMember{}).
		Where("shelter_id = ? AND role = ?", shelterID, models.ShelterRoleOwner).
		Count(&owners).Error; err != nil {
		return 0, fmt.Errorf("shelter service: count owners: %w", err)
	}
	return owners, nil
}
