package service

import (
	"context"
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.Plan)}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now().UTC()
	plan.UpdatedAt = plan.CreatedAt
	r.plans[plan.ID] = plan
	return plan.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, id := range ids {
		if p, ok := r.plans[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) GetByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	var out []domain.Plan
	for _, p := range r.plans {
		if p.TrainerID == trainerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id, trainerID primitive.ObjectID) error {
	p, ok := r.plans[id]
	if !ok || p.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type trainerFixture struct {
	svc      TrainerService
	userRepo *fakeUserRepo
	planRepo *fakePlanRepo
	trainer  *domain.User
	client   *domain.User
}

func newTrainerFixture(t *testing.T) *trainerFixture {
	t.Helper()

	trainer := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Tara Trainer",
		Email: "tara@example.com",
		Role:  domain.RoleTrainer,
	}
	client := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "Cleo Client",
		Email: "cleo@example.com",
		Role:  domain.RoleClient,
	}
	userRepo := newFakeUserRepo(trainer, client)
	planRepo := newFakePlanRepo()

	return &trainerFixture{
		svc:      NewTrainerService(userRepo, planRepo, nil),
		userRepo: userRepo,
		planRepo: planRepo,
		trainer:  trainer,
		client:   client,
	}
}

// --- Roster ---

func TestAddClientByEmail(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	client, err := f.svc.AddClientByEmail(ctx, f.trainer.ID, "cleo@example.com")
	require.NoError(t, err)
	require.NotNil(t, client.TrainerID)
	assert.Equal(t, f.trainer.ID, *client.TrainerID)
	assert.Contains(t, f.trainer.ClientIDs, client.ID)
}

func TestAddClientByEmailIdempotentForSameTrainer(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddClientByEmail(ctx, f.trainer.ID, "cleo@example.com")
	require.NoError(t, err)

	client, err := f.svc.AddClientByEmail(ctx, f.trainer.ID, "cleo@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.trainer.ID, *client.TrainerID)
	assert.Len(t, f.trainer.ClientIDs, 1, "no duplicate roster entry")
}

func TestAddClientByEmailAlreadyAssignedElsewhere(t *testing.T) {
	f := newTrainerFixture(t)
	other := primitive.NewObjectID()
	f.client.TrainerID = &other

	_, err := f.svc.AddClientByEmail(context.Background(), f.trainer.ID, "cleo@example.com")
	assert.ErrorIs(t, err, ErrClientAlreadyAssigned)
}

func TestAddClientByEmailNotFound(t *testing.T) {
	f := newTrainerFixture(t)

	_, err := f.svc.AddClientByEmail(context.Background(), f.trainer.ID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestAddClientByEmailWrongRole(t *testing.T) {
	f := newTrainerFixture(t)

	_, err := f.svc.AddClientByEmail(context.Background(), f.trainer.ID, "tara@example.com")
	assert.ErrorIs(t, err, ErrClientNotRole)
}

// --- Plans ---

func TestCreateAndAssignPlan(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddClientByEmail(ctx, f.trainer.ID, "cleo@example.com")
	require.NoError(t, err)

	plan, err := f.svc.CreatePlan(ctx, f.trainer.ID, domain.PlanProgram, "Push Pull Legs", "", []domain.PlanDay{
		{Day: "Monday", Exercises: []domain.PlanExercise{{Name: "Bench Press", Sets: 3, Reps: 8}}},
	})
	require.NoError(t, err)
	assert.False(t, plan.ID.IsZero())

	err = f.svc.AssignPlan(ctx, f.trainer.ID, f.client.ID, plan.ID)
	require.NoError(t, err)

	assert.Contains(t, f.client.ActivePlanIDs, plan.ID)
	require.Len(t, f.client.Notifications, 1)
	assert.Contains(t, f.client.Notifications[0].Message, "Push Pull Legs")
}

func TestCreatePlanInvalidType(t *testing.T) {
	f := newTrainerFixture(t)

	_, err := f.svc.CreatePlan(context.Background(), f.trainer.ID, "cardio", "Zone 2", "", nil)
	assert.Error(t, err)
}

func TestAssignPlanNotOwned(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	otherTrainer := primitive.NewObjectID()
	plan := &domain.Plan{TrainerID: otherTrainer, Type: domain.PlanDiet, Name: "Cutting"}
	_, err := f.planRepo.Create(ctx, plan)
	require.NoError(t, err)

	err = f.svc.AssignPlan(ctx, f.trainer.ID, f.client.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
}

func TestAssignPlanUnmanagedClient(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, f.trainer.ID, domain.PlanDiet, "Cutting", "", nil)
	require.NoError(t, err)

	err = f.svc.AssignPlan(ctx, f.trainer.ID, f.client.ID, plan.ID)
	assert.ErrorIs(t, err, ErrClientNotManaged)
}

func TestDeletePlan(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, f.trainer.ID, domain.PlanDiet, "Cutting", "", nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePlan(ctx, f.trainer.ID, plan.ID))
	assert.ErrorIs(t, f.svc.DeletePlan(ctx, f.trainer.ID, plan.ID), ErrPlanNotFound)
}

func TestDeletePlanScopedToOwner(t *testing.T) {
	f := newTrainerFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, f.trainer.ID, domain.PlanDiet, "Cutting", "", nil)
	require.NoError(t, err)

	err = f.svc.DeletePlan(ctx, primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = f.planRepo.GetByID(ctx, plan.ID)
	assert.NoError(t, err, "plan must survive a foreign delete attempt")
}
