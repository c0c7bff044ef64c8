package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// SponsorshipHandler exposes monthly pet sponsorship APIs.
type SponsorshipHandler struct {
	sponsorships *services.SponsorshipService
	pets         *services.PetService
	guard        *services.ShelterGuard
	users        *services.UserService
}

func NewSponsorshipHandler(sponsorships *services.SponsorshipService, pets *services.PetService, guard *services.ShelterGuard, users *services.UserService) *SponsorshipHandler {
	return &SponsorshipHandler{sponsorships: sponsorships, pets: pets, guard: guard, users: users}
}

type sponsorshipCreateRequest struct {
	PetID        string `json:"pet_id" validate:"required,uuid4"`
	MonthlyCents int64  `json:"monthly_cents" validate:"required,gt=0"`
}

// POST /api/sponsorships
func (h *SponsorshipHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req sponsorshipCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sponsorship, err := h.sponsorships.Create(requestContext(c), userID, req.PetID, req.MonthlyCents)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sponsorship)
}

// GET /api/sponsorships
func (h *SponsorshipHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	sponsorships, total, err := h.sponsorships.ListByUser(requestContext(c), userID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, sponsorships, response.NewMeta(page, perPage, total))
}

// GET /api/pets/:id/sponsorships
func (h *SponsorshipHandler) ListForPet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pet, err := h.pets.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := h.guard.Require(requestContext(c), userID, pet.ShelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	sponsorships, total, err := h.sponsorships.ListByPet(requestContext(c), pet.ID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, sponsorships, response.NewMeta(page, perPage, total))
}

// DELETE /api/sponsorships/:id
func (h *SponsorshipHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sponsorship, err := h.sponsorships.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if sponsorship.UserID != userID {
		user, err := h.users.Get(requestContext(c), userID)
		if err != nil || !user.IsAdmin() {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}

	if err := h.sponsorships.Cancel(requestContext(c), sponsorship.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}
