package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/crypto"
)

func TestInviteServiceCreateAndAccept(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "staff@example.com", models.PlatformRoleUser)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	invite, token, err := svc.Create(context.Background(), shelter.ID, "STAFF@example.com ", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "staff@example.com", invite.Email)
	require.Equal(t, models.InviteStatusPending, invite.Status)

	// Only the digest is persisted.
	var stored models.ShelterInvite
	require.NoError(t, db.First(&stored, "id = ?", invite.ID).Error)
	require.NotEqual(t, token, stored.TokenHash)
	require.Equal(t, crypto.HashToken(token), stored.TokenHash)

	member, err := svc.Accept(context.Background(), token, user)
	require.NoError(t, err)
	require.Equal(t, shelter.ID, member.ShelterID)
	require.Equal(t, user.ID, member.UserID)
	require.Equal(t, models.ShelterRoleStaff, member.Role)

	require.NoError(t, db.First(&stored, "id = ?", invite.ID).Error)
	require.Equal(t, models.InviteStatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)
}

func TestInviteServiceAcceptIsAtMostOnce(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "second-chance", models.ShelterStatusVerified)
	user := seedUser(t, db, "helper@example.com", models.PlatformRoleUser)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	_, token, err := svc.Create(context.Background(), shelter.ID, "helper@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, user)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, user)
	require.ErrorIs(t, err, ErrInviteAlreadyUsed)
}

func TestInviteServiceSecondInviteRevokesFirst(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "paw-patrol", models.ShelterStatusVerified)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	first, _, err := svc.Create(context.Background(), shelter.ID, "dup@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)
	second, _, err := svc.Create(context.Background(), shelter.ID, "dup@example.com", models.ShelterRoleManager, "owner")
	require.NoError(t, err)

	var pending int64
	require.NoError(t, db.Model(&models.ShelterInvite{}).
		Where("shelter_id = ? AND email = ? AND status = ?", shelter.ID, "dup@example.com", models.InviteStatusPending).
		Count(&pending).Error)
	require.EqualValues(t, 1, pending)

	var stored models.ShelterInvite
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	require.Equal(t, models.InviteStatusRevoked, stored.Status)
	stored = models.ShelterInvite{}
	require.NoError(t, db.First(&stored, "id = ?", second.ID).Error)
	require.Equal(t, models.InviteStatusPending, stored.Status)
}

func TestInviteServiceValidateExpiry(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewInviteService(db, nil,
		WithInviteClock(func() time.Time { return current }),
		WithInviteExpiry(time.Hour),
	)
	require.NoError(t, err)

	_, token, err := svc.Create(context.Background(), shelter.ID, "a@x.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	invite, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, models.ShelterRoleStaff, invite.Role)

	current = current.Add(2 * time.Hour)
	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInviteExpired)
}

func TestInviteServiceAcceptEmailMismatch(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	other := seedUser(t, db, "other@example.com", models.PlatformRoleUser)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	_, token, err := svc.Create(context.Background(), shelter.ID, "invitee@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, other)
	require.ErrorIs(t, err, ErrInviteEmailMismatch)
}

func TestInviteServiceRevoke(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "late@example.com", models.PlatformRoleUser)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	invite, token, err := svc.Create(context.Background(), shelter.ID, "late@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), shelter.ID, invite.ID))
	require.ErrorIs(t, svc.Revoke(context.Background(), shelter.ID, invite.ID), ErrInviteNotPending)

	_, err = svc.Accept(context.Background(), token, user)
	require.ErrorIs(t, err, ErrInviteRevoked)
}

func TestInviteServiceRevokeAndResendAreShelterScoped(t *testing.T) {
	db := openServiceTestDB(t)
	shelterA := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	shelterB := seedShelter(t, db, "second-chance", models.ShelterStatusVerified)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	invite, token, err := svc.Create(context.Background(), shelterA.ID, "scoped@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	// Mutations through another shelter's id must not touch the invite.
	require.ErrorIs(t, svc.Revoke(context.Background(), shelterB.ID, invite.ID), ErrInviteNotFound)
	_, _, err = svc.Resend(context.Background(), shelterB.ID, invite.ID, "owner")
	require.ErrorIs(t, err, ErrInviteNotFound)

	var stored models.ShelterInvite
	require.NoError(t, db.First(&stored, "id = ?", invite.ID).Error)
	require.Equal(t, models.InviteStatusPending, stored.Status)
	_, err = svc.Validate(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), shelterA.ID, invite.ID))
}

func TestInviteServiceResendRotatesToken(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	svc, err := NewInviteService(db, nil)
	require.NoError(t, err)

	invite, oldToken, err := svc.Create(context.Background(), shelter.ID, "resend@example.com", models.ShelterRoleManager, "owner")
	require.NoError(t, err)

	fresh, newToken, err := svc.Resend(context.Background(), shelter.ID, invite.ID, "owner")
	require.NoError(t, err)
	require.NotEqual(t, oldToken, newToken)
	require.Equal(t, invite.Email, fresh.Email)
	require.Equal(t, invite.Role, fresh.Role)

	_, err = svc.Validate(context.Background(), oldToken)
	require.ErrorIs(t, err, ErrInviteRevoked)
	_, err = svc.Validate(context.Background(), newToken)
	require.NoError(t, err)
}

func TestInviteServiceListShowsDerivedExpiry(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewInviteService(db, nil,
		WithInviteClock(func() time.Time { return current }),
		WithInviteExpiry(time.Hour),
	)
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), shelter.ID, "soon@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	current = current.Add(3 * time.Hour)
	invites, total, err := svc.List(context.Background(), shelter.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.InviteStatusExpired, invites[0].Status)
}

func TestInviteServiceExpirePendingSweep(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewInviteService(db, nil,
		WithInviteClock(func() time.Time { return current }),
		WithInviteExpiry(time.Hour),
	)
	require.NoError(t, err)

	invite, token, err := svc.Create(context.Background(), shelter.ID, "sweep@example.com", models.ShelterRoleStaff, "owner")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	swept, err := svc.ExpirePending(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, swept)

	var stored models.ShelterInvite
	require.NoError(t, db.First(&stored, "id = ?", invite.ID).Error)
	require.Equal(t, models.InviteStatusExpired, stored.Status)

	// The persisted status must not change the reported reason.
	_, err = svc.Validate(context.Background(), token)
	require.ErrorIs(t, err, ErrInviteExpired)
}
