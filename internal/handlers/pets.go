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

// PetHandler exposes the public pet catalogue and staff listing management.
type PetHandler struct {
	pets  *services.PetService
	guard *services.ShelterGuard
}

func NewPetHandler(pets *services.PetService, guard *services.ShelterGuard) *PetHandler {
	return &PetHandler{pets: pets, guard: guard}
}

type petCreateRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=120"`
	Species     string         `json:"species" validate:"required,min=2,max=60"`
	Breed       string         `json:"breed" validate:"max=120"`
	AgeMonths   int            `json:"age_months" validate:"gte=0,lte=600"`
	Size        string         `json:"size" validate:"omitempty,oneof=small medium large"`
	Sex         string         `json:"sex" validate:"omitempty,oneof=male female"`
	Description string         `json:"description" validate:"max=8000"`
	Vaccinated  bool           `json:"vaccinated"`
	Sterilized  bool           `json:"sterilized"`
	Photos      datatypes.JSON `json:"photos"`
}

// POST /api/shelters/:id/pets
func (h *PetHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	shelterID := c.Param("id")

	if _, err := h.guard.Require(requestContext(c), userID, shelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return
	}

	var req petCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pet, err := h.pets.Create(requestContext(c), shelterID, services.PetInput{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		Size:        req.Size,
		Sex:         req.Sex,
		Description: req.Description,
		Vaccinated:  req.Vaccinated,
		Sterilized:  req.Sterilized,
		Photos:      req.Photos,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, pet)
}

// GET /api/pets
func (h *PetHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	pets, total, err := h.pets.List(requestContext(c), services.PetListOptions{
		Page:      page,
		PageSize:  perPage,
		ShelterID: c.Query("shelter_id"),
		Species:   c.Query("species"),
		Size:      c.Query("size"),
		City:      c.Query("city"),
		Status:    c.Query("status"),
		MaxAge:    parseIntQuery(c, "max_age_months", 0),
		Query:     c.Query("q"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, pets, response.NewMeta(page, perPage, total))
}

// GET /api/pets/:id
func (h *PetHandler) Get(c *gin.Context) {
	pet, err := h.pets.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pet)
}

type petUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=120"`
	Species     *string         `json:"species" validate:"omitempty,min=2,max=60"`
	Breed       *string         `json:"breed" validate:"omitempty,max=120"`
	AgeMonths   *int            `json:"age_months" validate:"omitempty,gte=0,lte=600"`
	Size        *string         `json:"size" validate:"omitempty,oneof=small medium large"`
	Sex         *string         `json:"sex" validate:"omitempty,oneof=male female"`
	Description *string         `json:"description" validate:"omitempty,max=8000"`
	Vaccinated  *bool           `json:"vaccinated"`
	Sterilized  *bool           `json:"sterilized"`
	Photos      *datatypes.JSON `json:"photos"`
	Status      *string         `json:"status" validate:"omitempty,oneof=available pending adopted inactive"`
}

// PATCH /api/pets/:id
func (h *PetHandler) Update(c *gin.Context) {
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

	var req petUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.pets.Update(requestContext(c), pet.ID, services.PetUpdate{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		Size:        req.Size,
		Sex:         req.Sex,
		Description: req.Description,
		Vaccinated:  req.Vaccinated,
		Sterilized:  req.Sterilized,
		Photos:      req.Photos,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/pets/:id
func (h *PetHandler) Deactivate(c *gin.Context) {
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

	if _, err := h.guard.Require(requestContext(c), userID, pet.ShelterID, models.RolesManageShelter...); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.pets.Deactivate(requestContext(c), pet.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}
