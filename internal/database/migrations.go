package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Shelter{},
		&models.ShelterMember{},
		&models.ShelterInvite{},
		&models.Pet{},
		&models.AdoptionRequest{},
		&models.Campaign{},
		&models.CampaignDonation{},
		&models.VetSlot{},
		&models.Booking{},
		&models.Sponsorship{},
		&models.Favorite{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
}

// EnsureAdminUser creates the initial platform admin account when no admin
// exists yet. It is idempotent and safe to call on every start-up.
func EnsureAdminUser(db *gorm.DB, email, name, password string) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.PlatformRoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if strings.TrimSpace(password) == "" {
		return errors.New("initial admin password is required")
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Email:    email,
		Name:     strings.TrimSpace(name),
		Password: hashed,
		Role:     models.PlatformRoleAdmin,
		IsActive: true,
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	return nil
}
