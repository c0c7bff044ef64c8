package models

import "gorm.io/datatypes"

// Shelter moderation states. New shelters start in pending review and are
// verified or rejected by a platform admin.
const (
	ShelterStatusPendingReview = "pending_review"
	ShelterStatusVerified      = "verified"
	ShelterStatusRejected      = "rejected"
)

// Shelter is an organisation account that lists pets and manages staff.
type Shelter struct {
	BaseModel

	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	Email       string `gorm:"not null" json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	City        string `gorm:"index" json:"city"`
	Country     string `json:"country"`

	// Contact holds free-form contact details (social links, opening hours).
	Contact datatypes.JSON `json:"contact"`

	Status          string `gorm:"default:pending_review;index" json:"status"`
	ModerationNotes string `json:"moderation_notes,omitempty"`

	Members []ShelterMember `gorm:"foreignKey:ShelterID" json:"members,omitempty"`
	Pets    []Pet           `gorm:"foreignKey:ShelterID" json:"pets,omitempty"`
}

// IsVerified reports whether the shelter passed admin moderation.
func (s *Shelter) IsVerified() bool {
	return s.Status == ShelterStatusVerified
}
