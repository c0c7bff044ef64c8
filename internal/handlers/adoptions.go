package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// AdoptionHandler exposes adoption request submission and review APIs.
type AdoptionHandler struct {
	adoptions *services.AdoptionService
	guard     *services.ShelterGuard
	users     *services.UserService
}

func NewAdoptionHandler(adoptions *services.AdoptionService, guard *services.ShelterGuard, users *services.UserService) *AdoptionHandler {
	return &AdoptionHandler{adoptions: adoptions, guard: guard, users: users}
}

type adoptionSubmitRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2,max=160"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=32"`
	Household string `json:"household" validate:"max=4000"`
	Message   string `json:"message" validate:"max=8000"`
}

// POST /api/pets/:id/adoption-requests
// Public: applicants do not need an account, but a signed-in user is linked.
func (h *AdoptionHandler) Submit(c *gin.Context) {
	var req adoptionSubmitRequest
	if !bindAndValidate(c, &req) {
		return
	}

	app := services.AdoptionApplication{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Household: req.Household,
		Message:   req.Message,
	}
	if userID, ok := currentUserID(c); ok {
		app.ApplicantUserID = &userID
	}

	request, err := h.adoptions.Submit(requestContext(c), c.Param("id"), app)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// GET /api/shelters/:id/adoption-requests
func (h *AdoptionHandler) ListForShelter(c *gin.Context) {
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

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	requests, total, err := h.adoptions.List(requestContext(c), services.AdoptionListOptions{
		Page:      page,
		PageSize:  perPage,
		ShelterID: shelterID,
		PetID:     c.Query("pet_id"),
		Status:    c.Query("status"),
		Query:     c.Query("q"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, response.NewMeta(page, perPage, total))
}

// GET /api/admin/adoption-requests
func (h *AdoptionHandler) ListAll(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	requests, total, err := h.adoptions.List(requestContext(c), services.AdoptionListOptions{
		Page:      page,
		PageSize:  perPage,
		ShelterID: c.Query("shelter_id"),
		PetID:     c.Query("pet_id"),
		Status:    c.Query("status"),
		Query:     c.Query("q"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, requests, response.NewMeta(page, perPage, total))
}

// GET /api/adoption-requests/:id
func (h *AdoptionHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.adoptions.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.canView(c, userID, request) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	response.Success(c, http.StatusOK, request)
}

type adoptionTransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=pending under_review approved rejected completed"`
	Notes  string `json:"notes" validate:"max=4000"`
}

// POST /api/adoption-requests/:id/transition
func (h *AdoptionHandler) Transition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.adoptions.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := h.guard.Require(requestContext(c), userID, request.ShelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return
	}

	var req adoptionTransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.adoptions.Transition(requestContext(c), request.ID, req.Status, req.Notes, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/adoption-requests/:id
func (h *AdoptionHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.adoptions.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.isApplicant(c, userID, request) && !h.isAdmin(c, userID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	if err := h.adoptions.Cancel(requestContext(c), request.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *AdoptionHandler) canView(c *gin.Context, userID string, request *models.AdoptionRequest) bool {
	if h.isApplicant(c, userID, request) || h.isAdmin(c, userID) {
		return true
	}
	_, err := h.guard.Require(requestContext(c), userID, request.ShelterID, models.RolesStaff...)
	return err == nil
}

func (h *AdoptionHandler) isApplicant(c *gin.Context, userID string, request *models.AdoptionRequest) bool {
	if request.ApplicantUserID != nil && *request.ApplicantUserID == userID {
		return true
	}
	user, err := h.users.Get(requestContext(c), userID)
	return err == nil && user.Email == request.Email
}

func (h *AdoptionHandler) isAdmin(c *gin.Context, userID string) bool {
	user, err := h.users.Get(requestContext(c), userID)
	return err == nil && user.IsAdmin()
}
