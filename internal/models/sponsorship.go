package models

import "time"

// Sponsorship states.
const (
	SponsorshipStatusActive    = "active"
	SponsorshipStatusCancelled = "cancelled"
)

// Sponsorship is a recurring monthly pledge from a user towards a pet's care.
type Sponsorship struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	PetID string `gorm:"type:uuid;not null;index" json:"pet_id"`
	Pet   *Pet   `gorm:"foreignKey:PetID" json:"pet,omitempty"`

	MonthlyCents int64  `gorm:"not null" json:"monthly_cents"`
	Status       string `gorm:"default:active;index" json:"status"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
