package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
)

var (
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user: not found")
	// ErrInvalidPlatformRole signals an unknown platform role value.
	ErrInvalidPlatformRole = errors.New("user: invalid platform role")
)

// ProfileUpdate carries optional profile fields; nil fields are untouched.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

// UserListOptions filters the admin user listing.
type UserListOptions struct {
	Page     int
	PageSize int
	Role     string
	Query    string
	Active   *bool
}

// UserService covers profile reads and admin account management. Credential
// flows live in the auth providers.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, audit *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, audit: audit}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// GetWithMemberships returns the user with shelter memberships preloaded.
func (s *UserService) GetWithMemberships(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Memberships").
		Preload("Memberships.Shelter").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies partial profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.New("user service: name cannot be empty")
		}
		changes["name"] = name
	}
	if update.Avatar != nil {
		changes["avatar"] = strings.TrimSpace(*update.Avatar)
	}

	if len(changes) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("user service: update profile: %w", err)
	}

	return s.Get(ctx, userID)
}

// List returns users matching the filters, for the admin panel.
func (s *UserService) List(ctx context.Context, opts UserListOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize := clampPage(opts.Page, opts.PageSize)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.Role != "" {
		query = query.Where("role = ?", opts.Role)
	}
	if opts.Active != nil {
		query = query.Where("is_active = ?", *opts.Active)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// SetRole changes a user's platform role.
func (s *UserService) SetRole(ctx context.Context, userID, role, actorID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	if role != models.PlatformRoleUser && role != models.PlatformRoleAdmin {
		return nil, ErrInvalidPlatformRole
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role)
	if result.Error != nil {
		return nil, fmt.Errorf("user service: set role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "user.role",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"role": role},
	})

	return s.Get(ctx, userID)
}

// SetActive toggles account availability. Deactivating also revokes the
// user's sessions so access ends at the next token refresh.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool, actorID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("is_active", active)
		if result.Error != nil {
			return fmt.Errorf("user service: set active: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if !active {
			if err := tx.Model(&models.Session{}).
				Where("user_id = ? AND revoked_at IS NULL", userID).
				Update("revoked_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
				return fmt.Errorf("user service: revoke sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "user.activate"
	if !active {
		action = "user.deactivate"
	}
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   action,
		Resource: userID,
		Result:   "success",
	})

	return s.Get(ctx, userID)
}
