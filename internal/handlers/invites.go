package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// InviteHandler exposes shelter staff invite APIs.
type InviteHandler struct {
	invites *services.InviteService
	guard   *services.ShelterGuard
	users   *services.UserService
}

func NewInviteHandler(invites *services.InviteService, guard *services.ShelterGuard, users *services.UserService) *InviteHandler {
	return &InviteHandler{invites: invites, guard: guard, users: users}
}

type inviteCreateRequest struct {
	Email string             `json:"email" validate:"required,email"`
	Role  models.ShelterRole `json:"role" validate:"required"`
}

// POST /api/shelters/:id/invites
func (h *InviteHandler) Create(c *gin.Context) {
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

	var req inviteCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !req.Role.Valid() {
		response.Error(c, appErrors.NewBadRequest("unknown shelter role"))
		return
	}

	invite, token, err := h.invites.Create(requestContext(c), shelterID, req.Email, req.Role, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The raw token is surfaced exactly once, at creation time.
	response.Success(c, http.StatusCreated, gin.H{
		"invite": invite,
		"token":  token,
	})
}

// GET /api/shelters/:id/invites
func (h *InviteHandler) List(c *gin.Context) {
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

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	invites, total, err := h.invites.List(requestContext(c), shelterID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, invites, response.NewMeta(page, perPage, total))
}

// GET /api/invites/validate?token=...
// Public: the invitee follows the link before having an account.
func (h *InviteHandler) Validate(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.NewBadRequest("token is required"))
		return
	}

	invite, err := h.invites.Validate(requestContext(c), token)
	if err != nil {
		reason := validationReason(err)
		if reason == "" {
			respondServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"valid": false, "reason": reason})
		return
	}

	payload := gin.H{
		"valid": true,
		"email": invite.Email,
		"role":  invite.Role,
	}
	if invite.Shelter != nil {
		payload["shelter"] = gin.H{"id": invite.Shelter.ID, "name": invite.Shelter.Name}
	}
	response.Success(c, http.StatusOK, payload)
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, services.ErrInviteExpired):
		return "expired"
	case errors.Is(err, services.ErrInviteRevoked):
		return "revoked"
	case errors.Is(err, services.ErrInviteAlreadyUsed):
		return "used"
	case errors.Is(err, services.ErrInviteNotFound):
		return "not_found"
	default:
		return ""
	}
}

type inviteAcceptRequest struct {
	Token string `json:"token" validate:"required"`
}

// POST /api/invites/accept
func (h *InviteHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req inviteAcceptRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Get(requestContext(c), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	member, err := h.invites.Accept(requestContext(c), req.Token, user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DELETE /api/shelters/:id/invites/:inviteId
func (h *InviteHandler) Revoke(c *gin.Context) {
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

	if err := h.invites.Revoke(requestContext(c), shelterID, c.Param("inviteId")); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// POST /api/shelters/:id/invites/:inviteId/resend
func (h *InviteHandler) Resend(c *gin.Context) {
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

	invite, token, err := h.invites.Resend(requestContext(c), shelterID, c.Param("inviteId"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"invite": invite,
		"token":  token,
	})
}
