package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawhaven/pawhaven/internal/models"
)

func TestShelterServiceApplyCreatesOwner(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "founder@example.com", models.PlatformRoleUser)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	shelter, err := svc.Apply(context.Background(), user.ID, ShelterApplication{
		Name:  "Happy Tails",
		Email: "CONTACT@happytails.example",
		City:  "Springfield",
	})
	require.NoError(t, err)
	require.Equal(t, models.ShelterStatusPendingReview, shelter.Status)
	require.Equal(t, "contact@happytails.example", shelter.Email)

	members, err := svc.Members(context.Background(), shelter.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, user.ID, members[0].UserID)
	require.Equal(t, models.ShelterRoleOwner, members[0].Role)
}

func TestShelterServiceModeration(t *testing.T) {
	db := openServiceTestDB(t)
	admin := seedUser(t, db, "admin@example.com", models.PlatformRoleAdmin)
	shelter := seedShelter(t, db, "pending-home", models.ShelterStatusPendingReview)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), shelter.ID, admin.ID, "docs checked")
	require.NoError(t, err)
	require.Equal(t, models.ShelterStatusVerified, verified.Status)
	require.Equal(t, "docs checked", verified.ModerationNotes)

	// Decisions are one-shot.
	_, err = svc.Reject(context.Background(), shelter.ID, admin.ID, "changed my mind")
	require.ErrorIs(t, err, ErrShelterNotPending)
}

func TestShelterServicelistFilters(t *testing.T) {
	db := openServiceTestDB(t)
	seedShelter(t, db, "alpha-home", models.ShelterStatusVerified)
	seedShelter(t, db, "beta-home", models.ShelterStatusPendingReview)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	verified, total, err := svc.List(context.Background(), ShelterListOptions{Status: models.ShelterStatusVerified})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "alpha-home", verified[0].Name)

	matched, total, err := svc.List(context.Background(), ShelterListOptions{Query: "beta"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "beta-home", matched[0].Name)
}

func TestShelterServiceMemberRoleChange(t *testing.T) {
	db := openServiceTestDB(t)
	owner := seedUser(t, db, "owner@example.com", models.PlatformRoleUser)
	staff := seedUser(t, db, "staff@example.com", models.PlatformRoleUser)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	seedMember(t, db, shelter.ID, owner.ID, models.ShelterRoleOwner)
	seedMember(t, db, shelter.ID, staff.ID, models.ShelterRoleStaff)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	member, err := svc.UpdateMemberRole(context.Background(), shelter.ID, staff.ID, models.ShelterRoleManager, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.ShelterRoleManager, member.Role)

	_, err = svc.UpdateMemberRole(context.Background(), shelter.ID, staff.ID, "janitor", owner.ID)
	require.Error(t, err)
}

func TestShelterServiceLastOwnerGuard(t *testing.T) {
	db := openServiceTestDB(t)
	owner := seedUser(t, db, "owner@example.com", models.PlatformRoleUser)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	seedMember(t, db, shelter.ID, owner.ID, models.ShelterRoleOwner)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	_, err = svc.UpdateMemberRole(context.Background(), shelter.ID, owner.ID, models.ShelterRoleStaff, owner.ID)
	require.ErrorIs(t, err, ErrLastOwner)

	err = svc.RemoveMember(context.Background(), shelter.ID, owner.ID, owner.ID)
	require.ErrorIs(t, err, ErrLastOwner)

	// With a second owner the original owner can step down.
	second := seedUser(t, db, "second@example.com", models.PlatformRoleUser)
	seedMember(t, db, shelter.ID, second.ID, models.ShelterRoleOwner)

	member, err := svc.UpdateMemberRole(context.Background(), shelter.ID, owner.ID, models.ShelterRoleManager, second.ID)
	require.NoError(t, err)
	require.Equal(t, models.ShelterRoleManager, member.Role)
}

func TestShelterServiceRemoveMember(t *testing.T) {
	db := openServiceTestDB(t)
	owner := seedUser(t, db, "owner@example.com", models.PlatformRoleUser)
	staff := seedUser(t, db, "staff@example.com", models.PlatformRoleUser)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)
	seedMember(t, db, shelter.ID, owner.ID, models.ShelterRoleOwner)
	seedMember(t, db, shelter.ID, staff.ID, models.ShelterRoleStaff)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(context.Background(), shelter.ID, staff.ID, owner.ID))
	err = svc.RemoveMember(context.Background(), shelter.ID, staff.ID, owner.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestShelterServiceUpdateProfile(t *testing.T) {
	db := openServiceTestDB(t)
	shelter := seedShelter(t, db, "happy-tails", models.ShelterStatusVerified)

	svc, err := NewShelterService(db, nil)
	require.NoError(t, err)

	name := "Happy Tails Rescue"
	city := "Shelbyville"
	updated, err := svc.Update(context.Background(), shelter.ID, ShelterUpdate{Name: &name, City: &city})
	require.NoError(t, err)
	require.Equal(t, "Happy Tails Rescue", updated.Name)
	require.Equal(t, "Shelbyville", updated.City)

	empty := "  "
	_, err = svc.Update(context.Background(), shelter.ID, ShelterUpdate{Name: &empty})
	require.Error(t, err)
}
