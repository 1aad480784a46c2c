package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddClientIDToTrainer adds a client's ID to a trainer's ClientIDs array.
func (r *mongoUserRepository) AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	filter := bson.M{"_id": trainerID, "role": domain.RoleTrainer}
	update := bson.M{
		"$addToSet": bson.M{"clientIds": clientID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// SetTrainerForClient sets the TrainerID field for a specific client user.
func (r *mongoUserRepository) SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$set": bson.M{
			"trainerId": trainerID,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

// GetClientsByTrainerID retrieves all client users associated with a specific trainer.
func (r *mongoUserRepository) GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	trainer, err := r.GetByID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, errors.New("user is not a trainer")
	}
	if len(trainer.ClientIDs) == 0 {
		return []domain.User{}, nil
	}

	var clients []domain.User
	filter := bson.M{"_id": bson.M{"$in": trainer.ClientIDs}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// PushMeetingRequest appends a pending meeting summary to the user's
// meetingRequests list.
func (r *mongoUserRepository) PushMeetingRequest(ctx context.Context, userID primitive.ObjectID, summary domain.MeetingSummary) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$push": bson.M{"meetingRequests": summary},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// PushUpcomingMeeting records an approved meeting id on the user.
func (r *mongoUserRepository) PushUpcomingMeeting(ctx context.Context, userID, meetingID primitive.ObjectID) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$addToSet": bson.M{"upcomingMeetingIds": meetingID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// PullMeetingRefs removes every reference to the meeting from the user's
// denormalized lists in a single update.
func (r *mongoUserRepository) PullMeetingRefs(ctx context.Context, userID, meetingID primitive.ObjectID) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$pull": bson.M{
			"upcomingMeetingIds": meetingID,
			"meetingRequests":    bson.M{"meetingId": meetingID},
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// PushNotification appends a notification entry to the user's feed.
func (r *mongoUserRepository) PushNotification(ctx context.Context, userID primitive.ObjectID, n domain.Notification) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$push": bson.M{"notifications": n},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// MarkNotificationRead flips the read flag on a single notification entry
// using a positional array update.
func (r *mongoUserRepository) MarkNotificationRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	filter := bson.M{"_id": userID, "notifications._id": notificationID}
	update := bson.M{
		"$set": bson.M{
			"notifications.$.read": true,
			"updatedAt":            time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

// AddWeightEntry appends a point to the client's weight graph.
func (r *mongoUserRepository) AddWeightEntry(ctx context.Context, clientID primitive.ObjectID, entry domain.WeightEntry) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$push": bson.M{"weightLog": entry},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// SetMeasurements replaces the client's body measurements.
func (r *mongoUserRepository) SetMeasurements(ctx context.Context, clientID primitive.ObjectID, m domain.Measurements) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$set": bson.M{
			"measurements": m,
			"updatedAt":    time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

// AddActivePlan attaches a plan to the client's active plan list.
func (r *mongoUserRepository) AddActivePlan(ctx context.Context, clientID, planID primitive.ObjectID) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$addToSet": bson.M{"activePlanIds": planID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, filter, update)
}

// SetProfilePicKey stores the S3 object key of the user's profile picture.
func (r *mongoUserRepository) SetProfilePicKey(ctx context.Context, userID primitive.ObjectID, key string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$set": bson.M{
			"profilePicKey": key,
			"updatedAt":     time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

// SetSubscriptionState mirrors billing state onto the client record.
func (r *mongoUserRepository) SetSubscriptionState(ctx context.Context, clientID primitive.ObjectID, tier, status string) error {
	filter := bson.M{"_id": clientID, "role": domain.RoleClient}
	update := bson.M{
		"$set": bson.M{
			"subscriptionTier":   tier,
			"subscriptionStatus": status,
			"updatedAt":          time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, filter, update)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true), // not all users have trainerId
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
