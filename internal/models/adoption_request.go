package models

// Adoption request states. Transitions are forward-only and enforced by
// services.AdoptionService; this is the single canonical vocabulary.
const (
	AdoptionStatusPending     = "pending"
	AdoptionStatusUnderReview = "under_review"
	AdoptionStatusApproved    = "approved"
	AdoptionStatusRejected    = "rejected"
	AdoptionStatusCompleted   = "completed"
)

// AdoptionTransitions maps each status to the set of statuses it may move to.
// Rejected and completed are terminal.
var AdoptionTransitions = map[string][]string{
	AdoptionStatusPending:     {AdoptionStatusUnderReview, AdoptionStatusApproved, AdoptionStatusRejected},
	AdoptionStatusUnderReview: {AdoptionStatusApproved, AdoptionStatusRejected},
	AdoptionStatusApproved:    {AdoptionStatusCompleted},
	AdoptionStatusRejected:    {},
	AdoptionStatusCompleted:   {},
}

// ValidAdoptionStatus reports whether the value belongs to the canonical set.
func ValidAdoptionStatus(status string) bool {
	_, ok := AdoptionTransitions[status]
	return ok
}

// CanTransitionAdoption reports whether a request may move from one status to
// another.
func CanTransitionAdoption(from, to string) bool {
	for _, allowed := range AdoptionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AdoptionRequest tracks an applicant's interest in a pet through review.
// ShelterID is denormalised from the pet so staff listings avoid a join.
type AdoptionRequest struct {
	BaseModel

	PetID     string   `gorm:"type:uuid;not null;index" json:"pet_id"`
	Pet       *Pet     `gorm:"foreignKey:PetID" json:"pet,omitempty"`
	ShelterID string   `gorm:"type:uuid;not null;index" json:"shelter_id"`
	Shelter   *Shelter `gorm:"foreignKey:ShelterID" json:"shelter,omitempty"`

	ApplicantUserID *string `gorm:"type:uuid;index" json:"applicant_user_id,omitempty"`
	FullName        string  `gorm:"not null" json:"full_name"`
	Email           string  `gorm:"not null;index" json:"email"`
	Phone           string  `json:"phone"`
	Household       string  `json:"household"`
	Message         string  `json:"message"`

	Status        string  `gorm:"default:pending;index" json:"status"`
	DecisionNotes string  `json:"decision_notes,omitempty"`
	ReviewedBy    *string `gorm:"type:uuid" json:"reviewed_by,omitempty"`
}

// Terminal reports whether the request reached a final state.
func (r *AdoptionRequest) Terminal() bool {
	return len(AdoptionTransitions[r.Status]) == 0
}
