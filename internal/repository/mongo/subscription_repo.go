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

const subscriptionCollectionName = "subscriptions"

// mongoSubscriptionRepository implements repository.SubscriptionRepository
// using MongoDB.
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new instance of mongoSubscriptionRepository.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

// Upsert writes the client's subscription record, replacing any previous
// state. Webhook replays land on the same document, so the write is
// idempotent per client.
func (r *mongoSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if sub.ClientID == primitive.NilObjectID {
		return errors.New("subscription client is required")
	}

	now := time.Now().UTC()
	filter := bson.M{"clientId": sub.ClientID}
	update := bson.M{
		"$set": bson.M{
			"tier":                 sub.Tier,
			"status":               sub.Status,
			"stripeCustomerId":     sub.StripeCustomerID,
			"stripeSubscriptionId": sub.StripeSubscriptionID,
			"currentPeriodStart":   sub.CurrentPeriodStart,
			"currentPeriodEnd":     sub.CurrentPeriodEnd,
			"updatedAt":            now,
		},
		"$setOnInsert": bson.M{
			"clientId":  sub.ClientID,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetByClientID retrieves a client's subscription record.
func (r *mongoSubscriptionRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.collection.FindOne(ctx, bson.M{"clientId": clientID}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// EnsureSubscriptionIndexes creates necessary indexes for the subscriptions collection.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "stripeSubscriptionId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
