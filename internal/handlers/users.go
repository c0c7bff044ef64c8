package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// UserHandler exposes profile management and admin account APIs.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type profileUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

// PATCH /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req profileUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(requestContext(c), userID, services.ProfileUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userPayload(user))
}

// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	opts := services.UserListOptions{
		Page:     page,
		PageSize: perPage,
		Role:     c.Query("role"),
		Query:    c.Query("q"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("active must be a boolean"))
			return
		}
		opts.Active = &active
	}

	users, total, err := h.users.List(requestContext(c), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		payload = append(payload, userPayload(&users[i]))
	}

	response.SuccessWithMeta(c, http.StatusOK, payload, response.NewMeta(page, perPage, total))
}

type userRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// PATCH /api/admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req userRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.SetRole(requestContext(c), c.Param("id"), req.Role, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userPayload(user))
}

type userActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// PATCH /api/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req userActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.SetActive(requestContext(c), c.Param("id"), *req.Active, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userPayload(user))
}
