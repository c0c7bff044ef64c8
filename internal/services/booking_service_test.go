package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestBookingServiceBookClaimsSlotOnce(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	first := seedUser(t, db, "first@example.com", models.PlatformRoleUser)
	second := seedUser(t, db, "second@example.com", models.PlatformRoleUser)

	svc, err := NewBookingService(db)
	require.NoError(t, err)

	slot, err := svc.CreateSlot(context.Background(), shelter.ID, SlotInput{
		VetName:  "Dr. Vega",
		StartsAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	booking, err := svc.Book(context.Background(), slot.ID, first.ID, nil, "annual checkup")
	require.NoError(t, err)
	require.Equal(t, slot.ID, booking.SlotID)

	_, err = svc.Book(context.Background(), slot.ID, second.ID, nil, "")
	require.ErrorIs(t, err, ErrSlotTaken)

	var stored models.VetSlot
	require.NoError(t, db.First(&stored, "id = ?", slot.ID).Error)
	require.Equal(t, models.SlotStatusBooked, stored.Status)
}

func TestBookingServiceBookUnknownSlot(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	svc, err := NewBookingService(db)
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "00000000-0000-0000-0000-000000000000", user.ID, nil, "")
	require.ErrorIs(t, err, ErrSlotNotFound)
}

func TestBookingServiceCancelReleasesSlot(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	svc, err := NewBookingService(db)
	require.NoError(t, err)

	slot, err := svc.CreateSlot(context.Background(), shelter.ID, SlotInput{
		VetName:  "Dr. Vega",
		StartsAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	booking, err := svc.Book(context.Background(), slot.ID, user.ID, nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(context.Background(), booking.ID))

	var stored models.VetSlot
	require.NoError(t, db.First(&stored, "id = ?", slot.ID).Error)
	require.Equal(t, models.SlotStatusOpen, stored.Status)

	// The freed slot can be claimed again.
	_, err = svc.Book(context.Background(), slot.ID, user.ID, nil, "")
	require.NoError(t, err)
}

func TestBookingServiceCloseSlot(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	user := seedUser(t, db, "user@example.com", models.PlatformRoleUser)

	svc, err := NewBookingService(db)
	require.NoError(t, err)

	slot, err := svc.CreateSlot(context.Background(), shelter.ID, SlotInput{
		VetName:  "Dr. Vega",
		StartsAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.CloseSlot(context.Background(), slot.ID))

	_, err = svc.Book(context.Background(), slot.ID, user.ID, nil, "")
	require.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookingServiceListSlots(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	svc, err := NewBookingService(db)
	require.NoError(t, err)

	for day := 1; day <= 3; day++ {
		_, err := svc.CreateSlot(context.Background(), shelter.ID, SlotInput{
			VetName:  "Dr. Vega",
			StartsAt: time.Date(2026, 4, day, 9, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	slots, total, err := svc.ListSlots(context.Background(), shelter.ID, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, slots, 2)
	require.True(t, slots[0].StartsAt.Before(slots[1].StartsAt))
}
