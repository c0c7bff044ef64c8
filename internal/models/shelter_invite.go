package models

import "time"

// Shelter invite states. Pending is the only non-terminal state; expiry is
// derived from ExpiresAt at validation time and persisted lazily.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRevoked  = "revoked"
	InviteStatusExpired  = "expired"
)

// ShelterInvite is a single-use, time-limited credential granting a shelter
// role upon acceptance. Only the SHA-256 hash of the token is stored.
type ShelterInvite struct {
	BaseModel

	ShelterID string      `gorm:"type:uuid;not null;index" json:"shelter_id"`
	Email     string      `gorm:"not null;index" json:"email"`
	Role      ShelterRole `gorm:"not null" json:"role"`
	TokenHash string      `gorm:"uniqueIndex;not null" json:"-"`
	Status    string      `gorm:"default:pending;index" json:"status"`

	InvitedBy  string     `gorm:"type:uuid" json:"invited_by"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy *string    `gorm:"type:uuid" json:"accepted_by,omitempty"`

	Shelter *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`
}

// DisplayStatus reports the externally visible status, folding lazy expiry
// into the pending state.
func (i *ShelterInvite) DisplayStatus(now time.Time) string {
	if i.Status == InviteStatusPending && now.After(i.ExpiresAt) {
		return InviteStatusExpired
	}
	return i.Status
}
