package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// CampaignHandler exposes fundraising campaign and donation APIs.
type CampaignHandler struct {
	campaigns *services.CampaignService
	pets      *services.PetService
	guard     *services.ShelterGuard
}

func NewCampaignHandler(campaigns *services.CampaignService, pets *services.PetService, guard *services.ShelterGuard) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, pets: pets, guard: guard}
}

type campaignCreateRequest struct {
	PetID       string         `json:"pet_id" validate:"required,uuid4"`
	Title       string         `json:"title" validate:"required,min=2,max=200"`
	Description string         `json:"description" validate:"max=8000"`
	GoalCents   int64          `json:"goal_cents" validate:"required,gt=0"`
	Metadata    datatypes.JSON `json:"metadata"`
}

// POST /api/campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req campaignCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pet, err := h.pets.Get(requestContext(c), req.PetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := h.guard.Require(requestContext(c), userID, pet.ShelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return
	}

	campaign, err := h.campaigns.Create(requestContext(c), services.CampaignInput{
		PetID:       req.PetID,
		Title:       req.Title,
		Description: req.Description,
		GoalCents:   req.GoalCents,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, campaign)
}

// GET /api/campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	campaigns, total, err := h.campaigns.List(requestContext(c), services.CampaignListOptions{
		Page:      page,
		PageSize:  perPage,
		ShelterID: c.Query("shelter_id"),
		PetID:     c.Query("pet_id"),
		Status:    c.Query("status"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, campaigns, response.NewMeta(page, perPage, total))
}

// GET /api/campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaigns.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, campaign)
}

type campaignUpdateRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=8000"`
	GoalCents   *int64          `json:"goal_cents" validate:"omitempty,gt=0"`
	Metadata    *datatypes.JSON `json:"metadata"`
}

// PATCH /api/campaigns/:id
func (h *CampaignHandler) Update(c *gin.Context) {
	campaign, ok := h.requireStaff(c)
	if !ok {
		return
	}

	var req campaignUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.campaigns.Update(requestContext(c), campaign.ID, services.CampaignUpdate{
		Title:       req.Title,
		Description: req.Description,
		GoalCents:   req.GoalCents,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/campaigns/:id
func (h *CampaignHandler) Cancel(c *gin.Context) {
	campaign, ok := h.requireStaff(c)
	if !ok {
		return
	}

	if err := h.campaigns.Cancel(requestContext(c), campaign.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

type donateRequest struct {
	DonorName   string `json:"donor_name" validate:"required,min=1,max=160"`
	DonorEmail  string `json:"donor_email" validate:"omitempty,email"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Message     string `json:"message" validate:"max=2000"`
}

// POST /api/campaigns/:id/donations
// Public: anyone can donate to an active campaign.
func (h *CampaignHandler) Donate(c *gin.Context) {
	var req donateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	donation, err := h.campaigns.Donate(requestContext(c), c.Param("id"), services.Donor{
		Name:    req.DonorName,
		Email:   req.DonorEmail,
		Message: req.Message,
	}, req.AmountCents)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, donation)
}

// GET /api/campaigns/:id/donations
func (h *CampaignHandler) Donations(c *gin.Context) {
	campaign, ok := h.requireStaff(c)
	if !ok {
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	donations, total, err := h.campaigns.Donations(requestContext(c), campaign.ID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, donations, response.NewMeta(page, perPage, total))
}

// requireStaff loads the campaign and checks the caller holds a staff role at
// its shelter. On failure the response is already written.
func (h *CampaignHandler) requireStaff(c *gin.Context) (*models.Campaign, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	campaign, err := h.campaigns.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}

	if _, err := h.guard.Require(requestContext(c), userID, campaign.ShelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return nil, false
	}

	return campaign, true
}
