package models

import "gorm.io/datatypes"

// Pet listing states.
const (
	PetStatusAvailable = "available"
	PetStatusPending   = "pending"
	PetStatusAdopted   = "adopted"
	PetStatusInactive  = "inactive"
)

// Pet sizes.
const (
	PetSizeSmall  = "small"
	PetSizeMedium = "medium"
	PetSizeLarge  = "large"
)

// Pet is an adoptable animal owned by a shelter.
type Pet struct {
	BaseModel

	ShelterID string   `gorm:"type:uuid;not null;index" json:"shelter_id"`
	Shelter   *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`

	Name        string `gorm:"not null;index" json:"name"`
	Species     string `gorm:"not null;index" json:"species"`
	Breed       string `json:"breed"`
	AgeMonths   int    `json:"age_months"`
	Size        string `json:"size"`
	Sex         string `json:"sex"`
	Description string `json:"description"`

	Vaccinated bool `gorm:"default:false" json:"vaccinated"`
	Sterilized bool `gorm:"default:false" json:"sterilized"`

	// Photos holds an ordered JSON array of image URLs; upload handling is an
	// external collaborator.
	Photos datatypes.JSON `json:"photos"`

	Status string `gorm:"default:available;index" json:"status"`
}

// Adoptable reports whether the pet can receive new adoption requests.
func (p *Pet) Adoptable() bool {
	return p.Status == PetStatusAvailable || p.Status == PetStatusPending
}
