package repository

import (
	"context"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxnRunner runs a function inside a single storage transaction. Every
// multi-document meeting mutation goes through this so the meeting record
// and both parties' denormalized lists move together.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)

	// Roster
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// Scheduling list upkeep
	PushMeetingRequest(ctx context.Context, userID primitive.ObjectID, summary domain.MeetingSummary) error
	PushUpcomingMeeting(ctx context.Context, userID, meetingID primitive.ObjectID) error
	// PullMeetingRefs removes every reference to the meeting from the user's
	// meetingRequests and upcomingMeetingIds lists.
	PullMeetingRefs(ctx context.Context, userID, meetingID primitive.ObjectID) error

	// Notifications
	PushNotification(ctx context.Context, userID primitive.ObjectID, n domain.Notification) error
	MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error

	// Client profile
	AddWeightEntry(ctx context.Context, clientID primitive.ObjectID, entry domain.WeightEntry) error
	SetMeasurements(ctx context.Context, clientID primitive.ObjectID, m domain.Measurements) error
	AddActivePlan(ctx context.Context, clientID, planID primitive.ObjectID) error
	SetProfilePicKey(ctx context.Context, userID primitive.ObjectID, key string) error
	SetSubscriptionState(ctx context.Context, clientID primitive.ObjectID, tier, status string) error
}

// MeetingRepository defines the interface for interacting with meeting data.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meeting, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meeting, error)
	// GetByTrainerAndDate returns all live meetings for the trainer on the
	// given wire-format date, used for conflict checking.
	GetByTrainerAndDate(ctx context.Context, trainerID primitive.ObjectID, date string) ([]domain.Meeting, error)
	GetUpcomingByTrainer(ctx context.Context, trainerID primitive.ObjectID, from time.Time) ([]domain.Meeting, error)
	// UpdateStatus transitions the meeting's status only when it currently
	// holds the expected value, so concurrent approvals cannot both win.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.MeetingStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Plan, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error
}

// SubscriptionRepository defines the interface for subscription records.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.Subscription) error
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.Subscription, error)
}
