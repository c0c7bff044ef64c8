package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Platform-wide account roles. Shelter-scoped roles live on ShelterMember.
const (
	PlatformRoleUser  = "user"
	PlatformRoleAdmin = "admin"
)

// User describes a platform account. Password is empty for social accounts
// signed in through an external provider.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Password string `json:"-"`
	Avatar   string `json:"avatar"`

	Role         string `gorm:"default:user;index" json:"role"`
	AuthProvider string `gorm:"default:local" json:"auth_provider"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	Memberships []ShelterMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
	Sessions    []Session       `gorm:"foreignKey:UserID" json:"-"`
	Favorites   []Favorite      `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"-"`

	FailedAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the account carries the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == PlatformRoleAdmin
}
