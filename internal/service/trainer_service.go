package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"
	"github.com/daniyal-sudo/heraklean-backend/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a trainer")
	ErrClientNotManaged      = errors.New("client is not managed by this trainer")
	ErrPlanNotFound          = errors.New("plan not found")
	ErrPlanAccessDenied      = errors.New("access denied to this plan")
)

// TrainerService covers the trainer-side operations: roster management,
// plan authoring and assignment, and profile picture uploads.
type TrainerService interface {
	// Roster
	AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// Plans
	CreatePlan(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType, name, description string, days []domain.PlanDay) (*domain.Plan, error)
	GetPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	AssignPlan(ctx context.Context, trainerID, clientID, planID primitive.ObjectID) error
	DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error

	// Profile picture
	RequestProfilePicUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (uploadURL, objectKey string, err error)
	ConfirmProfilePic(ctx context.Context, userID primitive.ObjectID, objectKey string) error
}

type trainerService struct {
	userRepo    repository.UserRepository
	planRepo    repository.PlanRepository
	fileStorage storage.FileStorage
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	fileStorage storage.FileStorage,
) TrainerService {
	return &trainerService{
		userRepo:    userRepo,
		planRepo:    planRepo,
		fileStorage: fileStorage,
	}
}

// === Roster ===

// AddClientByEmail finds a client by email and assigns them to the trainer.
func (s *trainerService) AddClientByEmail(ctx context.Context, trainerID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || clientEmail == "" {
		return nil, errors.New("trainer ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	if client.TrainerID != nil && *client.TrainerID != primitive.NilObjectID {
		if *client.TrainerID == trainerID {
			return client, nil // already managed by this trainer
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToTrainer(ctx, trainerID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForClient(ctx, client.ID, trainerID); err != nil {
		return nil, err
	}

	client.TrainerID = &trainerID
	return client, nil
}

// GetManagedClients retrieves the list of clients managed by the trainer.
func (s *trainerService) GetManagedClients(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	clients, err := s.userRepo.GetClientsByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// === Plans ===

// CreatePlan stores a new diet or program plan for the trainer.
func (s *trainerService) CreatePlan(ctx context.Context, trainerID primitive.ObjectID, planType domain.PlanType, name, description string, days []domain.PlanDay) (*domain.Plan, error) {
	if trainerID == primitive.NilObjectID || name == "" {
		return nil, errors.New("trainer ID and plan name are required")
	}
	if planType != domain.PlanDiet && planType != domain.PlanProgram {
		return nil, errors.New("plan type must be diet or program")
	}

	plan := &domain.Plan{
		TrainerID:   trainerID,
		Type:        planType,
		Name:        name,
		Description: description,
		Days:        days,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return plan, nil
}

// GetPlans lists the trainer's plans.
func (s *trainerService) GetPlans(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return s.planRepo.GetByTrainerID(ctx, trainerID)
}

// AssignPlan attaches one of the trainer's plans to a managed client and
// notifies the client.
func (s *trainerService) AssignPlan(ctx context.Context, trainerID, clientID, planID primitive.ObjectID) error {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if plan.TrainerID != trainerID {
		return ErrPlanAccessDenied
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.TrainerID == nil || *client.TrainerID != trainerID {
		return ErrClientNotManaged
	}

	if err := s.userRepo.AddActivePlan(ctx, clientID, planID); err != nil {
		return err
	}

	message := fmt.Sprintf("Your trainer assigned you a new %s plan: %s", plan.Type, plan.Name)
	return s.userRepo.PushNotification(ctx, clientID, domain.NewNotification(message))
}

// DeletePlan removes one of the trainer's plans.
func (s *trainerService) DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.planRepo.Delete(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}

// === Profile picture ===

// RequestProfilePicUpload returns a presigned PUT URL and the object key the
// client must upload to. The key is confirmed separately once the upload
// succeeds.
func (s *trainerService) RequestProfilePicUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (string, string, error) {
	if s.fileStorage == nil {
		return "", "", errors.New("file storage is not configured")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := fmt.Sprintf("profile-pics/%s/%s", userID.Hex(), uuid.NewString())
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, 0)
	if err != nil {
		return "", "", err
	}
	return url, objectKey, nil
}

// ConfirmProfilePic records the uploaded object key on the user.
func (s *trainerService) ConfirmProfilePic(ctx context.Context, userID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}
	return s.userRepo.SetProfilePicKey(ctx, userID, objectKey)
}
