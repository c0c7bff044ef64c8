package models

import "gorm.io/datatypes"

// Campaign states.
const (
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Campaign is a fundraising drive tied to a pet. RaisedCents is incremented
// in the same transaction as each donation insert, so the stored total and
// the donation rows cannot drift apart.
type Campaign struct {
	BaseModel

	PetID     string   `gorm:"type:uuid;not null;index" json:"pet_id"`
	Pet       *Pet     `gorm:"foreignKey:PetID" json:"pet,omitempty"`
	ShelterID string   `gorm:"type:uuid;not null;index" json:"shelter_id"`
	Shelter   *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	GoalCents   int64  `gorm:"not null" json:"goal_cents"`
	RaisedCents int64  `gorm:"default:0" json:"raised_cents"`

	// Metadata carries presentation extras (cover image, highlight colour).
	Metadata datatypes.JSON `json:"metadata"`

	Status string `gorm:"default:active;index" json:"status"`

	Donations []CampaignDonation `gorm:"foreignKey:CampaignID" json:"donations,omitempty"`
}

// GoalReached reports whether the raised total covers the goal.
func (c *Campaign) GoalReached() bool {
	return c.GoalCents > 0 && c.RaisedCents >= c.GoalCents
}

// CampaignDonation records a single participation event in a campaign.
type CampaignDonation struct {
	BaseModel

	CampaignID string    `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign   *Campaign `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`

	DonorName   string `gorm:"not null" json:"donor_name"`
	DonorEmail  string `gorm:"index" json:"donor_email"`
	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Message     string `json:"message"`
}
