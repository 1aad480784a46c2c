package service

import (
	"context"
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type clientFixture struct {
	svc      ClientService
	userRepo *fakeUserRepo
	planRepo *fakePlanRepo
	client   *domain.User
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	client := &domain.User{
		ID:             primitive.NewObjectID(),
		Name:           "Cleo Client",
		Email:          "cleo@example.com",
		Role:           domain.RoleClient,
		StartingWeight: 82.5,
	}
	userRepo := newFakeUserRepo(client)
	planRepo := newFakePlanRepo()

	return &clientFixture{
		svc:      NewClientService(userRepo, planRepo, nil),
		userRepo: userRepo,
		planRepo: planRepo,
		client:   client,
	}
}

func TestAddWeightEntry(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.AddWeightEntry(ctx, f.client.ID, 81.2, at))

	require.Len(t, f.client.WeightLog, 1)
	assert.Equal(t, 81.2, f.client.WeightLog[0].Weight)
	assert.True(t, f.client.WeightLog[0].Date.Equal(at))
}

func TestAddWeightEntryDefaultsDate(t *testing.T) {
	f := newClientFixture(t)

	require.NoError(t, f.svc.AddWeightEntry(context.Background(), f.client.ID, 81.2, time.Time{}))
	require.Len(t, f.client.WeightLog, 1)
	assert.False(t, f.client.WeightLog[0].Date.IsZero())
}

func TestAddWeightEntryRejectsNonPositive(t *testing.T) {
	f := newClientFixture(t)

	assert.Error(t, f.svc.AddWeightEntry(context.Background(), f.client.ID, 0, time.Time{}))
	assert.Error(t, f.svc.AddWeightEntry(context.Background(), f.client.ID, -3, time.Time{}))
}

func TestGetWeightLog(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	starting, entries, err := f.svc.GetWeightLog(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 82.5, starting)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	require.NoError(t, f.svc.AddWeightEntry(ctx, f.client.ID, 81.2, time.Time{}))
	_, entries, err = f.svc.GetWeightLog(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetWeightLogUnknownClient(t *testing.T) {
	f := newClientFixture(t)

	_, _, err := f.svc.GetWeightLog(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestUpdateMeasurements(t *testing.T) {
	f := newClientFixture(t)

	m := domain.Measurements{ChestBack: "102cm", Waist: "84cm"}
	require.NoError(t, f.svc.UpdateMeasurements(context.Background(), f.client.ID, m))

	require.NotNil(t, f.client.Measurements)
	assert.Equal(t, "102cm", f.client.Measurements.ChestBack)
	assert.Equal(t, "84cm", f.client.Measurements.Waist)
}

func TestGetActivePlans(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	plan := &domain.Plan{TrainerID: primitive.NewObjectID(), Type: domain.PlanProgram, Name: "PPL"}
	planID, err := f.planRepo.Create(ctx, plan)
	require.NoError(t, err)
	f.client.ActivePlanIDs = []primitive.ObjectID{planID}

	plans, err := f.svc.GetActivePlans(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "PPL", plans[0].Name)
}

func TestNotificationFeed(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	n := domain.NewNotification("Meeting approved for 2026-09-15 at 2:00 PM")
	require.NoError(t, f.userRepo.PushNotification(ctx, f.client.ID, n))

	feed, err := f.svc.GetNotifications(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.False(t, feed[0].Read)

	require.NoError(t, f.svc.MarkNotificationRead(ctx, f.client.ID, n.ID))
	feed, err = f.svc.GetNotifications(ctx, f.client.ID)
	require.NoError(t, err)
	assert.True(t, feed[0].Read)
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	f := newClientFixture(t)

	err := f.svc.MarkNotificationRead(context.Background(), f.client.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestGetNotificationsEmptyFeed(t *testing.T) {
	f := newClientFixture(t)

	feed, err := f.svc.GetNotifications(context.Background(), f.client.ID)
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)
}

func TestGetProfilePicURLWithoutStorage(t *testing.T) {
	f := newClientFixture(t)
	f.client.ProfilePicKey = "profile-pics/abc/def"

	url, err := f.svc.GetProfilePicURL(context.Background(), f.client.ID)
	require.NoError(t, err)
	assert.Empty(t, url)
}
