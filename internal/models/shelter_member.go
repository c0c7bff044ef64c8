package models

// ShelterRole is the single role vocabulary for shelter-scoped authorization.
// The original code base mixed several equivalent string sets; every call site
// here uses this enumeration and the capability sets below.
type ShelterRole string

const (
	ShelterRoleOwner   ShelterRole = "owner"
	ShelterRoleManager ShelterRole = "manager"
	ShelterRoleStaff   ShelterRole = "staff"
)

// Valid reports whether the role is one of the known shelter roles.
func (r ShelterRole) Valid() bool {
	switch r {
	case ShelterRoleOwner, ShelterRoleManager, ShelterRoleStaff:
		return true
	}
	return false
}

// Capability sets shared across services. Owners always hold every capability
// a manager holds, and managers every capability staff hold.
var (
	// RolesManageShelter may edit the shelter profile and its membership.
	RolesManageShelter = []ShelterRole{ShelterRoleOwner, ShelterRoleManager}
	// RolesStaff covers day-to-day work: pets, adoption reviews, bookings, campaigns.
	RolesStaff = []ShelterRole{ShelterRoleOwner, ShelterRoleManager, ShelterRoleStaff}
	// RolesOwner is reserved for destructive operations and ownership transfer.
	RolesOwner = []ShelterRole{ShelterRoleOwner}
)

// ShelterMember links a user to a shelter with a scoped role. The composite
// unique index guarantees a single membership row per (shelter, user) pair.
type ShelterMember struct {
	BaseModel

	ShelterID string      `gorm:"type:uuid;not null;uniqueIndex:idx_shelter_user" json:"shelter_id"`
	UserID    string      `gorm:"type:uuid;not null;uniqueIndex:idx_shelter_user" json:"user_id"`
	Role      ShelterRole `gorm:"not null" json:"role"`

	Shelter *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
