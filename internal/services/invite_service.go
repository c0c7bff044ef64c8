package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/crypto"
	"github.com/pawhaven/pawhaven/pkg/mail"
	"github.com/pawhaven/pawhaven/pkg/metrics"
)

const (
	defaultInviteExpiry     = 72 * time.Hour
	defaultInviteTokenBytes = 48
)

var (
	// ErrInviteNotFound indicates no invite matches the provided token or id.
	ErrInviteNotFound = errors.New("invite: not found")
	// ErrInviteExpired indicates the invite token has passed its expiry.
	ErrInviteExpired = errors.New("invite: expired")
	// ErrInviteRevoked indicates the invite was revoked before use.
	ErrInviteRevoked = errors.New("invite: revoked")
	// ErrInviteAlreadyUsed signals that the invite has already been accepted.
	ErrInviteAlreadyUsed = errors.New("invite: already accepted")
	// ErrInviteEmailMismatch signals the accepting account's email differs from the invitee.
	ErrInviteEmailMismatch = errors.New("invite: email mismatch")
	// ErrInviteNotPending signals a lifecycle operation on a non-pending invite.
	ErrInviteNotPending = errors.New("invite: not pending")
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteBaseURL configures the base URL used to build invite hyperlinks.
func WithInviteBaseURL(url string) InviteOption {
	return func(s *InviteService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInviteExpiry overrides the invite token lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *InviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteTokenSize adjusts the random token length in bytes.
func WithInviteTokenSize(size int) InviteOption {
	return func(s *InviteService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InviteService manages shelter staff invites: issuance, validation,
// acceptance and revocation. Raw tokens are returned to the caller exactly
// once; only their SHA-256 digest is persisted.
type InviteService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, mailer mail.Mailer, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}

	service := &InviteService{
		db:          db,
		mailer:      mailer,
		expiry:      defaultInviteExpiry,
		tokenLength: defaultInviteTokenBytes,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create issues a new invite for the shelter. Any prior pending invite for
// the same (shelter, email) pair is revoked in the same transaction, so at
// most one pending invite exists per pair at any time. Returns the raw token
// alongside the persisted invite.
func (s *InviteService) Create(ctx context.Context, shelterID, email string, role models.ShelterRole, invitedBy string) (*models.ShelterInvite, string, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return nil, "", errors.New("invite service: email is required")
	}
	if shelterID == "" {
		return nil, "", errors.New("invite service: shelter id is required")
	}
	if !role.Valid() {
		return nil, "", fmt.Errorf("invite service: invalid role %q", role)
	}

	rawToken, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("invite service: generate token: %w", err)
	}

	now := s.now()
	invite := models.ShelterInvite{
		ShelterID: shelterID,
		Email:     email,
		Role:      role,
		TokenHash: crypto.HashToken(rawToken),
		Status:    models.InviteStatusPending,
		InvitedBy: strings.TrimSpace(invitedBy),
		ExpiresAt: now.Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ShelterInvite{}).
			Where("shelter_id = ? AND email = ? AND status = ?", shelterID, email, models.InviteStatusPending).
			Update("status", models.InviteStatusRevoked).Error; err != nil {
			return fmt.Errorf("invite service: revoke prior invites: %w", err)
		}
		if err := tx.Create(&invite).Error; err != nil {
			return fmt.Errorf("invite service: create invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	metrics.InviteEvents.WithLabelValues("created").Inc()

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{email},
			Subject: "You're invited to join a shelter on PawHaven",
			Body:    s.inviteBody(s.inviteLink(rawToken)),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return nil, "", fmt.Errorf("invite service: send email: %w", mailErr)
		}
	}

	return &invite, rawToken, nil
}

// Validate looks up an invite by its raw token and reports whether it can
// still be accepted. It never mutates state; expiry is derived from the clock.
func (s *InviteService) Validate(ctx context.Context, token string) (*models.ShelterInvite, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}

	var invite models.ShelterInvite
	if err := s.db.WithContext(ctx).
		Preload("Shelter").
		Where("token_hash = ?", crypto.HashToken(token)).
		First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("invite service: find invite: %w", err)
	}

	switch invite.Status {
	case models.InviteStatusRevoked:
		return nil, ErrInviteRevoked
	case models.InviteStatusAccepted:
		return nil, ErrInviteAlreadyUsed
	case models.InviteStatusExpired:
		// The maintenance sweep persists the expired status; the reason
		// stays "expired" either way.
		return nil, ErrInviteExpired
	}

	if s.now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	return &invite, nil
}

// Accept consumes the invite on behalf of the authenticated user. The status
// flip and the membership upsert happen in one transaction; the guarded
// update ensures a token is consumed at most once even under concurrent
// acceptance attempts.
func (s *InviteService) Accept(ctx context.Context, token string, user *models.User) (*models.ShelterMember, error) {
	ctx = ensureContext(ctx)

	if user == nil {
		return nil, errors.New("invite service: user is required")
	}

	invite, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if normaliseEmail(user.Email) != invite.Email {
		return nil, ErrInviteEmailMismatch
	}

	now := s.now()
	member := models.ShelterMember{
		ShelterID: invite.ShelterID,
		UserID:    user.ID,
		Role:      invite.Role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShelterInvite{}).
			Where("id = ? AND status = ?", invite.ID, models.InviteStatusPending).
			Updates(map[string]any{
				"status":      models.InviteStatusAccepted,
				"accepted_at": now,
				"accepted_by": user.ID,
			})
		if result.Error != nil {
			return fmt.Errorf("invite service: mark accepted: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInviteAlreadyUsed
		}

		var existing models.ShelterMember
		findErr := tx.Where("shelter_id = ? AND user_id = ?", invite.ShelterID, user.ID).First(&existing).Error
		switch {
		case findErr == nil:
			// Already a member: the invite upgrades the role when it grants more.
			if existing.Role != invite.Role {
				if err := tx.Model(&existing).Update("role", invite.Role).Error; err != nil {
					return fmt.Errorf("invite service: update membership role: %w", err)
				}
				existing.Role = invite.Role
			}
			member = existing
			return nil
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := tx.Create(&member).Error; err != nil {
				if isUniqueConstraintError(err) {
					return tx.Where("shelter_id = ? AND user_id = ?", invite.ShelterID, user.ID).First(&member).Error
				}
				return fmt.Errorf("invite service: create membership: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("invite service: load membership: %w", findErr)
		}
	})
	if err != nil {
		return nil, err
	}

	metrics.InviteEvents.WithLabelValues("accepted").Inc()
	return &member, nil
}

// Revoke marks a pending invite as revoked. The lookup is scoped to the
// given shelter so callers can only mutate invites they were authorised for;
// revoking a non-pending invite is rejected so accepted invites keep their
// audit trail intact.
func (s *InviteService) Revoke(ctx context.Context, shelterID, inviteID string) error {
	ctx = ensureContext(ctx)

	if shelterID == "" || inviteID == "" {
		return ErrInviteNotFound
	}

	result := s.db.WithContext(ctx).Model(&models.ShelterInvite{}).
		Where("id = ? AND shelter_id = ? AND status = ?", inviteID, shelterID, models.InviteStatusPending).
		Update("status", models.InviteStatusRevoked)
	if result.Error != nil {
		return fmt.Errorf("invite service: revoke invite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var invite models.ShelterInvite
		if err := s.db.WithContext(ctx).
			First(&invite, "id = ? AND shelter_id = ?", inviteID, shelterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("invite service: load invite: %w", err)
		}
		return ErrInviteNotPending
	}

	metrics.InviteEvents.WithLabelValues("revoked").Inc()
	return nil
}

// Resend revokes the pending invite and issues a fresh token for the same
// shelter, email and role. Like Revoke, the lookup is scoped to the given
// shelter.
func (s *InviteService) Resend(ctx context.Context, shelterID, inviteID, invitedBy string) (*models.ShelterInvite, string, error) {
	ctx = ensureContext(ctx)

	if shelterID == "" || inviteID == "" {
		return nil, "", ErrInviteNotFound
	}

	var invite models.ShelterInvite
	if err := s.db.WithContext(ctx).
		First(&invite, "id = ? AND shelter_id = ?", inviteID, shelterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInviteNotFound
		}
		return nil, "", fmt.Errorf("invite service: load invite: %w", err)
	}
	if invite.Status != models.InviteStatusPending {
		return nil, "", ErrInviteNotPending
	}

	return s.Create(ctx, invite.ShelterID, invite.Email, invite.Role, invitedBy)
}

// List returns the shelter's invites ordered newest first. Statuses are
// reported through DisplayStatus so expired-but-unswept invites read as
// expired.
func (s *InviteService) List(ctx context.Context, shelterID string, page, pageSize int) ([]models.ShelterInvite, int64, error) {
	ctx = ensureContext(ctx)

	page, pageSize = clampPage(page, pageSize)

	query := s.db.WithContext(ctx).Model(&models.ShelterInvite{}).Where("shelter_id = ?", shelterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("invite service: count invites: %w", err)
	}

	var invites []models.ShelterInvite
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invites).Error; err != nil {
		return nil, 0, fmt.Errorf("invite service: list invites: %w", err)
	}

	now := s.now()
	for i := range invites {
		invites[i].Status = invites[i].DisplayStatus(now)
	}

	return invites, total, nil
}

// ExpirePending flips pending invites whose expiry is in the past to the
// expired status. Used by the maintenance sweep.
func (s *InviteService) ExpirePending(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.ShelterInvite{}).
		Where("status = ? AND expires_at < ?", models.InviteStatusPending, s.now()).
		Update("status", models.InviteStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("invite service: expire invites: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.InviteEvents.WithLabelValues("expired").Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (s *InviteService) inviteLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/invites/accept?token=%s", s.baseURL, token)
}

func (s *InviteService) inviteBody(link string) string {
	return fmt.Sprintf("Hello,\n\nYou have been invited to join a shelter team on PawHaven. Use the following link to accept your invite:\n%s\n\nIf you did not expect this email, you can ignore it.\n", link)
}
