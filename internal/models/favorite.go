package models

// Favorite bookmarks a pet for a user. The composite unique index makes the
// operation naturally idempotent.
type Favorite struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_pet" json:"user_id"`
	PetID  string `gorm:"type:uuid;not null;uniqueIndex:idx_user_pet" json:"pet_id"`

	Pet *Pet `gorm:"foreignKey:PetID" json:"pet,omitempty"`
}
