package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestSponsorshipServiceCreateAndCancel(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)
	user := seedUser(t, db, "sponsor@example.com", models.PlatformRoleUser)

	svc, err := NewSponsorshipService(db)
	require.NoError(t, err)

	sponsorship, err := svc.Create(context.Background(), user.ID, pet.ID, 2_500)
	require.NoError(t, err)
	require.Equal(t, models.SponsorshipStatusActive, sponsorship.Status)

	require.NoError(t, svc.Cancel(context.Background(), sponsorship.ID))

	stored, err := svc.Get(context.Background(), sponsorship.ID)
	require.NoError(t, err)
	require.Equal(t, models.SponsorshipStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)

	require.ErrorIs(t, svc.Cancel(context.Background(), sponsorship.ID), ErrSponsorshipCancelled)
}

func TestSponsorshipServiceValidation(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)
	user := seedUser(t, db, "sponsor@example.com", models.PlatformRoleUser)

	svc, err := NewSponsorshipService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, pet.ID, 0)
	require.Error(t, err)

	_, err = svc.Create(context.Background(), user.ID, "00000000-0000-0000-0000-000000000000", 1_000)
	require.ErrorIs(t, err, ErrPetNotFound)
}

func TestSponsorshipServiceListings(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	rex := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)
	luna := seedPet(t, db, shelter.ID, "Luna", models.PetStatusAvailable)
	user := seedUser(t, db, "sponsor@example.com", models.PlatformRoleUser)
	other := seedUser(t, db, "other@example.com", models.PlatformRoleUser)

	svc, err := NewSponsorshipService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, rex.ID, 1_000)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), user.ID, luna.ID, 1_500)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, rex.ID, 2_000)
	require.NoError(t, err)

	mine, total, err := svc.ListByUser(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, mine, 2)

	forRex, total, err := svc.ListByPet(context.Background(), rex.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, forRex, 2)
}
