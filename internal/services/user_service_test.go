package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestUserServiceUpdateProfile(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	name := "New Name"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)

	empty := " "
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Name: &empty})
	require.Error(t, err)
}

func TestUserServiceSetRole(t *testing.T) {
	db := openServiceTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	promoted, err := svc.SetRole(context.Background(), user.ID, models.PlatformRoleAdmin, admin.ID)
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin())

	_, err = svc.SetRole(context.Background(), user.ID, "superuser", admin.ID)
	require.ErrorIs(t, err, ErrInvalidPlatformRole)

	_, err = svc.SetRole(context.Background(), "00000000-0000-0000-0000-000000000000", models.PlatformRoleUser, admin.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceDeactivateRevokesSessions(t *testing.T) {
	db := openServiceTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	session := &models.Session{
		UserID:       user.ID,
		RefreshToken: "digest-value",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(session).Error)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	deactivated, err := svc.SetActive(context.Background(), user.ID, false, admin.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)

	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.NotNil(t, stored.RevokedAt)
}

func TestUserServiceList(t *testing.T) {
	db := openServiceTestDB(t)
	seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)
	seedUser(t, db, "one@example.com", models.PlatformRoleUser)
	seedUser(t, db, "two@example.com", models.PlatformRoleUser)

	svc, err := NewUserService(db, nil)
	require.NoError(t, err)

	admins, total, err := svc.List(context.Background(), UserListOptions{Role: models.PlatformRoleAdmin})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "admin@example.com", admins[0].Email)

	matched, total, err := svc.List(context.Background(), UserListOptions{Query: "two@"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "two@example.com", matched[0].Email)
}
