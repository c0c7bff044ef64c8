package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestEnsureAdminUser(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if err := EnsureAdminUser(db, "admin@example.com", "Admin", "ChangeMe123!"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.PlatformRoleAdmin).Count(&count).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 admin, got %d", count)
	}

	// Second call must be a no-op even with different credentials.
	if err := EnsureAdminUser(db, "other@example.com", "Other", "Password1!"); err != nil {
		t.Fatalf("ensure admin second call: %v", err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.PlatformRoleAdmin).Count(&count).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected admin count to remain 1, got %d", count)
	}
}

func TestEnsureAdminUserSkipsWithoutEmail(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if err := EnsureAdminUser(db, "", "", ""); err != nil {
		t.Fatalf("expected empty email to be a no-op: %v", err)
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
