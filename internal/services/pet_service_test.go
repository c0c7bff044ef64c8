package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestPetServiceCreateAndGet(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	svc, err := NewPetService(db)
	require.NoError(t, err)

	pet, err := svc.Create(context.Background(), shelter.ID, PetInput{
		Name:      "Rex",
		Species:   "Dog",
		Breed:     "Labrador",
		AgeMonths: 24,
		Size:      models.PetSizeLarge,
	})
	require.NoError(t, err)
	require.Equal(t, "dog", pet.Species)
	require.Equal(t, models.PetStatusAvailable, pet.Status)

	loaded, err := svc.Get(context.Background(), pet.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Shelter)
	require.Equal(t, shelter.ID, loaded.Shelter.ID)

	_, err = svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrPetNotFound)
}

func TestPetServiceListHidesRetiredByDefault(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)
	seedPet(t, db, shelter.ID, "Milo", models.PetStatusAdopted)
	seedPet(t, db, shelter.ID, "Luna", models.PetStatusInactive)

	svc, err := NewPetService(db)
	require.NoError(t, err)

	pets, total, err := svc.List(context.Background(), PetListOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Rex", pets[0].Name)

	adopted, total, err := svc.List(context.Background(), PetListOptions{Status: models.PetStatusAdopted})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Milo", adopted[0].Name)
}

func TestPetServiceListFilters(t *testing.T) {
	db := openServiceTestDB(t)
	springfield := seedShelter(t, db, "springfield-home", models.ShelterStatusVerified)
	other := &models.Shelter{Name: "shelby-home", Email: "c@shelby.example", City: "Shelbyville", Status: models.ShelterStatusVerified}
	require.NoError(t, db.Create(other).Error)

	seedPet(t, db, springfield.ID, "Rex", models.PetStatusAvailable)
	cat := &models.Pet{ShelterID: other.ID, Name: "Whiskers", Species: "cat", Status: models.PetStatusAvailable}
	require.NoError(t, db.Create(cat).Error)

	svc, err := NewPetService(db)
	require.NoError(t, err)

	cats, total, err := svc.List(context.Background(), PetListOptions{Species: "Cat"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Whiskers", cats[0].Name)

	inCity, total, err := svc.List(context.Background(), PetListOptions{City: "Shelbyville"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Whiskers", inCity[0].Name)

	byName, total, err := svc.List(context.Background(), PetListOptions{Query: "rex"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Rex", byName[0].Name)
}

func TestPetServiceUpdate(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewPetService(db)
	require.NoError(t, err)

	breed := "Beagle"
	vaccinated := true
	updated, err := svc.Update(context.Background(), pet.ID, PetUpdate{Breed: &breed, Vaccinated: &vaccinated})
	require.NoError(t, err)
	require.Equal(t, "Beagle", updated.Breed)
	require.True(t, updated.Vaccinated)

	bad := "lost"
	_, err = svc.Update(context.Background(), pet.ID, PetUpdate{Status: &bad})
	require.Error(t, err)
}

func TestPetServiceDeactivate(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	pet := seedPet(t, db, shelter.ID, "Rex", models.PetStatusAvailable)

	svc, err := NewPetService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), pet.ID))

	stored, err := svc.Get(context.Background(), pet.ID)
	require.NoError(t, err)
	require.Equal(t, models.PetStatusInactive, stored.Status)

	require.ErrorIs(t, svc.Deactivate(context.Background(), "00000000-0000-0000-0000-000000000000"), ErrPetNotFound)
}
