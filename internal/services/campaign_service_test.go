package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestCampaignServiceDonateIncrementsRaised(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewCampaignService(db)
	require.NoError(t, err)

	campaign, err := svc.Create(context.Background(), CampaignInput{
		PetID:     pet.ID,
		Title:     "Surgery for Rex",
		GoalCents: 100_000,
	})
	require.NoError(t, err)
	require.Equal(t, shelter.ID, campaign.ShelterID)

	donation, err := svc.Donate(context.Background(), campaign.ID, Donor{Name: "Jamie", Email: "jamie@example.com"}, 25_000)
	require.NoError(t, err)
	require.EqualValues(t, 25_000, donation.AmountCents)

	_, err = svc.Donate(context.Background(), campaign.ID, Donor{Name: "Sam"}, 30_000)
	require.NoError(t, err)

	stored, err := svc.Get(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.EqualValues(t, 55_000, stored.RaisedCents)
	require.Equal(t, models.CampaignStatusActive, stored.Status)
}

func TestCampaignServiceDonateAutoCompletes(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewCampaignService(db)
	require.NoError(t, err)

	campaign, err := svc.Create(context.Background(), CampaignInput{
		PetID:     pet.ID,
		Title:     "Vaccinations",
		GoalCents: 10_000,
	})
	require.NoError(t, err)

	_, err = svc.Donate(context.Background(), campaign.ID, Donor{Name: "Jamie"}, 10_000)
	require.NoError(t, err)

	stored, err := svc.Get(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Equal(t, models.CampaignStatusCompleted, stored.Status)

	// Completed campaigns stop accepting donations.
	_, err = svc.Donate(context.Background(), campaign.ID, Donor{Name: "Sam"}, 500)
	require.ErrorIs(t, err, ErrCampaignClosed)
}

func TestCampaignServiceDonateValidation(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewCampaignService(db)
	require.NoError(t, err)

	campaign, err := svc.Create(context.Background(), CampaignInput{
		PetID:     pet.ID,
		Title:     "Food fund",
		GoalCents: 5_000,
	})
	require.NoError(t, err)

	_, err = svc.Donate(context.Background(), campaign.ID, Donor{Name: "Jamie"}, 0)
	require.ErrorIs(t, err, ErrDonationAmount)

	_, err = svc.Donate(context.Background(), "00000000-0000-0000-0000-000000000000", Donor{Name: "Jamie"}, 100)
	require.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestCampaignServiceCancel(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewCampaignService(db)
	require.NoError(t, err)

	campaign, err := svc.Create(context.Background(), CampaignInput{
		PetID:     pet.ID,
		Title:     "Transport",
		GoalCents: 5_000,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), campaign.ID))
	require.ErrorIs(t, svc.Cancel(context.Background(), campaign.ID), ErrCampaignClosed)

	_, err = svc.Donate(context.Background(), campaign.ID, Donor{Name: "Jamie"}, 100)
	require.ErrorIs(t, err, ErrCampaignClosed)
}

func TestCampaignServiceDonationsListing(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewCampaignService(db)
	require.NoError(t, err)

	campaign, err := svc.Create(context.Background(), CampaignInput{
		PetID:     pet.ID,
		Title:     "Bedding",
		GoalCents: 50_000,
	})
	require.NoError(t, err)

	for _, name := range []string{"Jamie", "Sam", "Alex"} {
		_, err := svc.Donate(context.Background(), campaign.ID, Donor{Name: name}, 1_000)
		require.NoError(t, err)
	}

	donations, total, err := svc.Donations(context.Background(), campaign.ID, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, donations, 2)
}
