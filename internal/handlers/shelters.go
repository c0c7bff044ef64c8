package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// ShelterHandler exposes shelter registration, directory and membership APIs.
type ShelterHandler struct {
	shelters *services.ShelterService
	guard    *services.ShelterGuard
	users    *services.UserService
}

func NewShelterHandler(shelters *services.ShelterService, guard *services.ShelterGuard, users *services.UserService) *ShelterHandler {
	return &ShelterHandler{shelters: shelters, guard: guard, users: users}
}

type shelterApplyRequest struct {
	Name        string         `json:"name" validate:"required,min=2,max=160"`
	Description string         `json:"description" validate:"max=4000"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"phone" validate:"max=32"`
	Website     string         `json:"website" validate:"omitempty,url"`
	Address     string         `json:"address" validate:"max=400"`
	City        string         `json:"city" validate:"max=120"`
	Country     string         `json:"country" validate:"max=120"`
	Contact     datatypes.JSON `json:"contact"`
}

// POST /api/shelters
func (h *ShelterHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req shelterApplyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	shelter, err := h.shelters.Apply(requestContext(c), userID, services.ShelterApplication{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Contact:     req.Contact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, shelter)
}

// GET /api/shelters
func (h *ShelterHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	opts := services.ShelterListOptions{
		Page:     page,
		PageSize: perPage,
		City:     c.Query("city"),
		Query:    c.Query("q"),
		Status:   models.ShelterStatusVerified,
	}

	// Admins may browse any moderation status.
	if requested := c.Query("status"); requested != "" && h.isAdmin(c) {
		opts.Status = requested
	}

	shelters, total, err := h.shelters.List(requestContext(c), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, shelters, response.NewMeta(page, perPage, total))
}

// GET /api/shelters/:id
func (h *ShelterHandler) Get(c *gin.Context) {
	shelter, err := h.shelters.Get(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Unverified shelters are only visible to admins and their own members.
	if !shelter.IsVerified() && !h.isAdmin(c) {
		userID, ok := currentUserID(c)
		if !ok {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		member, err := h.guard.Membership(requestContext(c), userID, shelter.ID)
		if err != nil || member == nil {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
	}

	response.Success(c, http.StatusOK, shelter)
}

type shelterUpdateRequest struct {
	Name        *string         `json:"name" validate:"omitempty,min=2,max=160"`
	Description *string         `json:"description" validate:"omitempty,max=4000"`
	Email       *string         `json:"email" validate:"omitempty,email"`
	Phone       *string         `json:"phone" validate:"omitempty,max=32"`
	Website     *string         `json:"website" validate:"omitempty,url"`
	Address     *string         `json:"address" validate:"omitempty,max=400"`
	City        *string         `json:"city" validate:"omitempty,max=120"`
	Country     *string         `json:"country" validate:"omitempty,max=120"`
	Contact     *datatypes.JSON `json:"contact"`
}

// PATCH /api/shelters/:id
func (h *ShelterHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	shelterID := c.Param("id")

	if _, err := h.guard.Require(requestContext(c), userID, shelterID, models.RolesManageShelter...); err != nil {
		respondServiceError(c, err)
		return
	}

	var req shelterUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	shelter, err := h.shelters.Update(requestContext(c), shelterID, services.ShelterUpdate{
		Name:        req.Name,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		Contact:     req.Contact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, shelter)
}

type moderationRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// POST /api/admin/shelters/:id/verify
func (h *ShelterHandler) Verify(c *gin.Context) {
	h.moderate(c, h.shelters.Verify)
}

// POST /api/admin/shelters/:id/reject
func (h *ShelterHandler) Reject(c *gin.Context) {
	h.moderate(c, h.shelters.Reject)
}

func (h *ShelterHandler) moderate(c *gin.Context, decide func(ctx context.Context, shelterID, adminID, notes string) (*models.Shelter, error)) {
	adminID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req moderationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	shelter, err := decide(requestContext(c), c.Param("id"), adminID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, shelter)
}

// GET /api/shelters/:id/members
func (h *ShelterHandler) Members(c *gin.Context) {
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

	members, err := h.shelters.Members(requestContext(c), shelterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}

type memberRoleRequest struct {
	Role models.ShelterRole `json:"role" validate:"required"`
}

// PATCH /api/shelters/:id/members/:userId
func (h *ShelterHandler) UpdateMemberRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	shelterID := c.Param("id")

	if _, err := h.guard.Require(requestContext(c), actorID, shelterID, models.RolesOwner...); err != nil {
		respondServiceError(c, err)
		return
	}

	var req memberRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !req.Role.Valid() {
		response.Error(c, appErrors.NewBadRequest("unknown shelter role"))
		return
	}

	member, err := h.shelters.UpdateMemberRole(requestContext(c), shelterID, c.Param("userId"), req.Role, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DELETE /api/shelters/:id/members/:userId
func (h *ShelterHandler) RemoveMember(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	shelterID := c.Param("id")

	if _, err := h.guard.Require(requestContext(c), actorID, shelterID, models.RolesOwner...); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.shelters.RemoveMember(requestContext(c), shelterID, c.Param("userId"), actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func (h *ShelterHandler) isAdmin(c *gin.Context) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}
