package service

import (
	"context"
	"errors"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"
	"github.com/daniyal-sudo/heraklean-backend/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotificationNotFound = errors.New("notification not found")

// ClientService covers the client-side operations: weight tracking, body
// measurements, plan views and the notification feed.
type ClientService interface {
	AddWeightEntry(ctx context.Context, clientID primitive.ObjectID, weight float64, at time.Time) error
	GetWeightLog(ctx context.Context, clientID primitive.ObjectID) (startingWeight float64, entries []domain.WeightEntry, err error)
	UpdateMeasurements(ctx context.Context, clientID primitive.ObjectID, m domain.Measurements) error

	GetActivePlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.Plan, error)

	GetNotifications(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error

	GetProfilePicURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

type clientService struct {
	userRepo    repository.UserRepository
	planRepo    repository.PlanRepository
	fileStorage storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	fileStorage storage.FileStorage,
) ClientService {
	return &clientService{
		userRepo:    userRepo,
		planRepo:    planRepo,
		fileStorage: fileStorage,
	}
}

// AddWeightEntry appends a point to the client's weight graph.
func (s *clientService) AddWeightEntry(ctx context.Context, clientID primitive.ObjectID, weight float64, at time.Time) error {
	if weight <= 0 {
		return errors.New("weight must be positive")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	err := s.userRepo.AddWeightEntry(ctx, clientID, domain.WeightEntry{Date: at, Weight: weight})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}

// GetWeightLog returns the client's starting weight and logged entries.
func (s *clientService) GetWeightLog(ctx context.Context, clientID primitive.ObjectID) (float64, []domain.WeightEntry, error) {
	client, err := s.getClient(ctx, clientID)
	if err != nil {
		return 0, nil, err
	}
	entries := client.WeightLog
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	return client.StartingWeight, entries, nil
}

// UpdateMeasurements replaces the client's body measurements.
func (s *clientService) UpdateMeasurements(ctx context.Context, clientID primitive.ObjectID, m domain.Measurements) error {
	err := s.userRepo.SetMeasurements(ctx, clientID, m)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrClientNotFound
	}
	return err
}

// GetActivePlans returns the plans currently assigned to the client.
func (s *clientService) GetActivePlans(ctx context.Context, clientID primitive.ObjectID) ([]domain.Plan, error) {
	client, err := s.getClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.planRepo.GetByIDs(ctx, client.ActivePlanIDs)
}

// GetNotifications returns the user's notification feed, newest last.
// Works for both roles; the feed shape is identical.
func (s *clientService) GetNotifications(ctx context.Context, userID primitive.ObjectID) ([]domain.Notification, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if user.Notifications == nil {
		return []domain.Notification{}, nil
	}
	return user.Notifications, nil
}

// MarkNotificationRead flips the read flag on one notification entry.
func (s *clientService) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.userRepo.MarkNotificationRead(ctx, userID, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// GetProfilePicURL returns a presigned download URL for the user's profile
// picture, or an empty string when none is set.
func (s *clientService) GetProfilePicURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrClientNotFound
		}
		return "", err
	}
	if user.ProfilePicKey == "" || s.fileStorage == nil {
		return "", nil
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, user.ProfilePicKey, 0)
}

func (s *clientService) getClient(ctx context.Context, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}
	return client, nil
}
