package models

import "time"

// Vet slot states. The open→booked flip is a single conditional update, which
// is what makes concurrent double booking impossible.
const (
	SlotStatusOpen   = "open"
	SlotStatusBooked = "booked"
	SlotStatusClosed = "closed"
)

// VetSlot is a bookable veterinary appointment slot published by a shelter.
type VetSlot struct {
	BaseModel

	ShelterID string   `gorm:"type:uuid;not null;index" json:"shelter_id"`
	Shelter   *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`

	VetName  string    `gorm:"not null" json:"vet_name"`
	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	Status   string    `gorm:"default:open;index" json:"status"`
}

// Booking links a user to a claimed vet slot.
type Booking struct {
	BaseModel

	SlotID string   `gorm:"type:uuid;not null;uniqueIndex" json:"slot_id"`
	Slot   *VetSlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	PetID *string `gorm:"type:uuid" json:"pet_id,omitempty"`
	Notes string  `json:"notes"`
}
