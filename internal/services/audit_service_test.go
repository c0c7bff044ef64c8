package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		UserID:   &user.ID,
		Action:   "shelter.verify",
		Resource: "shelter-1",
		Result:   "success",
		Metadata: map[string]any{"notes": "docs checked"},
	}))
	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Action: "auth.login",
		Result: "failure",
	}))

	logs, total, err := svc.List(context.Background(), AuditListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	filtered, total, err := svc.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{Action: "shelter.verify"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "shelter-1", filtered[0].Resource)
	require.NotNil(t, filtered[0].User)
	require.Equal(t, user.Email, filtered[0].User.Email)
}

func TestAuditServiceLogValidation(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "auth.login"}))
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := openServiceTestDB(t)

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	old := models.AuditLog{Action: "auth.login", Result: "success"}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -90)).Error)

	recent := models.AuditLog{Action: "auth.login", Result: "success"}
	require.NoError(t, db.Create(&recent).Error)

	removed, err := svc.CleanupOlderThan(context.Background(), 30)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	_, err = svc.CleanupOlderThan(context.Background(), 0)
	require.Error(t, err)
}
