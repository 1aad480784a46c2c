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

const meetingCollectionName = "meetings"

// mongoMeetingRepository implements repository.MeetingRepository using MongoDB.
type mongoMeetingRepository struct {
	collection *mongo.Collection
}

// NewMongoMeetingRepository creates a new instance of mongoMeetingRepository.
func NewMongoMeetingRepository(db *mongo.Database) repository.MeetingRepository {
	return &mongoMeetingRepository{
		collection: db.Collection(meetingCollectionName),
	}
}

// Create inserts a new meeting record.
func (r *mongoMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) (primitive.ObjectID, error) {
	if meeting.ClientID == primitive.NilObjectID || meeting.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("meeting client and trainer are required")
	}

	meeting.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, meeting)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a meeting by its ObjectID.
func (r *mongoMeetingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// GetByIDs retrieves the meetings whose ids appear in the given list.
func (r *mongoMeetingRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Meeting, error) {
	if len(ids) == 0 {
		return []domain.Meeting{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []domain.Meeting
	if err = cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// GetByTrainerAndDate returns all live meetings for a trainer on a given
// wire-format date. Cancelled/declined meetings are deleted outright, so
// everything found here counts for conflict checking.
func (r *mongoMeetingRepository) GetByTrainerAndDate(ctx context.Context, trainerID primitive.ObjectID, date string) ([]domain.Meeting, error) {
	filter := bson.M{"trainerId": trainerID, "date": date}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []domain.Meeting
	if err = cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// GetUpcomingByTrainer returns the trainer's approved meetings starting at
// or after the given instant, earliest first.
func (r *mongoMeetingRepository) GetUpcomingByTrainer(ctx context.Context, trainerID primitive.ObjectID, from time.Time) ([]domain.Meeting, error) {
	filter := bson.M{
		"trainerId": trainerID,
		"status":    domain.MeetingApproved,
		"startsAt":  bson.M{"$gte": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []domain.Meeting
	if err = cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// UpdateStatus transitions the meeting status with a compare-and-swap on the
// current value. A concurrent transition loses the race and gets ErrNotFound.
func (r *mongoMeetingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.MeetingStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":    to,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a meeting record. Deletion is terminal; there is no soft
// delete for cancelled or declined meetings.
func (r *mongoMeetingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMeetingIndexes creates necessary indexes for the meetings collection.
func EnsureMeetingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Conflict checks scan a trainer's meetings for one date.
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}, {Key: "startsAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
