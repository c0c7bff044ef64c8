package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// BookingHandler exposes vet slot publishing and booking APIs.
type BookingHandler struct {
	bookings *services.BookingService
	guard    *services.ShelterGuard
	users    *services.UserService
}

func NewBookingHandler(bookings *services.BookingService, guard *services.ShelterGuard, users *services.UserService) *BookingHandler {
	return &BookingHandler{bookings: bookings, guard: guard, users: users}
}

type slotCreateRequest struct {
	VetName  string    `json:"vet_name" validate:"required,min=2,max=160"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

// POST /api/shelters/:id/slots
func (h *BookingHandler) CreateSlot(c *gin.Context) {
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

	var req slotCreateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	slot, err := h.bookings.CreateSlot(requestContext(c), shelterID, services.SlotInput{
		VetName:  req.VetName,
		StartsAt: req.StartsAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, slot)
}

// GET /api/shelters/:id/slots
func (h *BookingHandler) ListSlots(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.NewBadRequest("from must be an RFC 3339 timestamp"))
			return
		}
		from = parsed
	}

	slots, total, err := h.bookings.ListSlots(requestContext(c), c.Param("id"), from, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, slots, response.NewMeta(page, perPage, total))
}

// DELETE /api/slots/:id
func (h *BookingHandler) CloseSlot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	slotID := c.Param("id")
	slot, err := h.bookings.GetSlot(requestContext(c), slotID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if _, err := h.guard.Require(requestContext(c), userID, slot.ShelterID, models.RolesStaff...); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.bookings.CloseSlot(requestContext(c), slotID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"closed": true})
}

type bookRequest struct {
	PetID *string `json:"pet_id" validate:"omitempty,uuid4"`
	Notes string  `json:"notes" validate:"max=2000"`
}

// POST /api/slots/:id/book
func (h *BookingHandler) Book(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req bookRequest
	if !bindAndValidate(c, &req) {
		return
	}

	booking, err := h.bookings.Book(requestContext(c), c.Param("id"), userID, req.PetID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

// GET /api/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 20)

	bookings, total, err := h.bookings.ListBookings(requestContext(c), userID, page, perPage)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bookings, response.NewMeta(page, perPage, total))
}

// DELETE /api/bookings/:id
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	booking, err := h.bookings.GetBooking(requestContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if booking.UserID != userID && !h.isAdmin(c, userID) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	if err := h.bookings.CancelBooking(requestContext(c), booking.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *BookingHandler) isAdmin(c *gin.Context, userID string) bool {
	user, err := h.users.Get(requestContext(c), userID)
	return err == nil && user.IsAdmin()
}
