package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/middleware"
	"github.com/pawhaven/pawhaven/internal/services"
	appErrors "github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// serviceError maps service sentinel errors onto transport-level AppErrors.
// Anything unrecognised falls through as an internal server error.
func serviceError(err error) *appErrors.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrGuardForbidden):
		return appErrors.ErrForbidden
	case errors.Is(err, services.ErrGuardShelterNotFound),
		errors.Is(err, services.ErrShelterNotFound),
		errors.Is(err, services.ErrPetNotFound),
		errors.Is(err, services.ErrAdoptionNotFound),
		errors.Is(err, services.ErrCampaignNotFound),
		errors.Is(err, services.ErrSlotNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrSponsorshipNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		return appErrors.ErrNotFound
	case errors.Is(err, services.ErrInviteExpired):
		return appErrors.NewConflict("invite has expired")
	case errors.Is(err, services.ErrInviteRevoked):
		return appErrors.NewConflict("invite has been revoked")
	case errors.Is(err, services.ErrInviteAlreadyUsed):
		return appErrors.NewConflict("invite has already been used")
	case errors.Is(err, services.ErrInviteEmailMismatch):
		return appErrors.ErrForbidden
	case errors.Is(err, services.ErrInviteNotPending):
		return appErrors.NewConflict("invite is no longer pending")
	case errors.Is(err, services.ErrAdoptionInvalidStatus):
		return appErrors.NewBadRequest("unknown adoption status")
	case errors.Is(err, services.ErrAdoptionTransition):
		return appErrors.NewConflict("adoption status transition not allowed")
	case errors.Is(err, services.ErrPetNotAdoptable):
		return appErrors.NewConflict("pet is not accepting adoption requests")
	case errors.Is(err, services.ErrShelterNotPending):
		return appErrors.NewConflict("shelter has already been reviewed")
	case errors.Is(err, services.ErrLastOwner):
		return appErrors.NewConflict("a shelter must keep at least one owner")
	case errors.Is(err, services.ErrSlotTaken):
		return appErrors.NewConflict("slot is no longer available")
	case errors.Is(err, services.ErrCampaignClosed):
		return appErrors.NewConflict("campaign is not active")
	case errors.Is(err, services.ErrDonationAmount):
		return appErrors.NewBadRequest("donation amount must be positive")
	case errors.Is(err, services.ErrSponsorshipCancelled):
		return appErrors.NewConflict("sponsorship is already cancelled")
	case errors.Is(err, services.ErrInvalidPlatformRole):
		return appErrors.NewBadRequest("unknown platform role")
	default:
		return appErrors.ErrInternalServer.WithInternal(err)
	}
}

func respondServiceError(c *gin.Context, err error) {
	response.Error(c, serviceError(err))
}

// currentUserID extracts the authenticated user id placed by the auth middleware.
func currentUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxUserIDKey)
	if !ok {
		return "", false
	}
	id, _ := v.(string)
	return id, id != ""
}
