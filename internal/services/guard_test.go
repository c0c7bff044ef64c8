package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestShelterGuardNonMemberIsForbidden(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	outsider := seedUser(t, db, "outsider@example.com", models.PlatformRoleUser)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	_, err = guard.Require(context.Background(), outsider.ID, shelter.ID, models.RolesStaff...)
	require.ErrorIs(t, err, ErrGuardForbidden)
}

func TestShelterGuardMemberRoleCheck(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	staff := seedUser(t, db, "staff@example.com", models.PlatformRoleUser)
	seedMember(t, db, shelter.ID, staff.ID, models.ShelterRoleStaff)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	grant, err := guard.Require(context.Background(), staff.ID, shelter.ID, models.RolesStaff...)
	require.NoError(t, err)
	require.Equal(t, models.ShelterRoleStaff, grant.Role)
	require.False(t, grant.IsAdmin)

	// Staff may not act where managers are required.
	_, err = guard.Require(context.Background(), staff.ID, shelter.ID, models.RolesManageShelter...)
	require.ErrorIs(t, err, ErrGuardForbidden)
}

func TestShelterGuardAdminBypass(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	admin := seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	grant, err := guard.Require(context.Background(), admin.ID, shelter.ID, models.RolesOwner...)
	require.NoError(t, err)
	require.True(t, grant.IsAdmin)
}

func TestShelterGuardUnknownShelter(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	_, err = guard.Require(context.Background(), user.ID, "00000000-0000-0000-0000-000000000000", models.RolesStaff...)
	require.ErrorIs(t, err, ErrGuardShelterNotFound)
}

func TestShelterGuardInactiveUser(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "gone@example.com", models.PlatformRoleUser)
	seedMember(t, db, shelter.ID, user.ID, models.ShelterRoleOwner)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	_, err = guard.Require(context.Background(), user.ID, shelter.ID, models.RolesOwner...)
	require.ErrorIs(t, err, ErrGuardForbidden)
}

func TestShelterGuardMembership(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "member@example.com", models.PlatformRoleUser)
	seedMember(t, db, shelter.ID, user.ID, models.ShelterRoleManager)

	guard, err := NewShelterGuard(db)
	require.NoError(t, err)

	member, err := guard.Membership(context.Background(), user.ID, shelter.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	require.Equal(t, models.ShelterRoleManager, member.Role)

	none, err := guard.Membership(context.Background(), user.ID, "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	require.Nil(t, none)
}
