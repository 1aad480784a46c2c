package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus mirrors the billing provider's subscription state.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription records a client's billing state, driven by Stripe webhooks.
// One document per client; webhook handling upserts it.
type Subscription struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID             primitive.ObjectID `bson:"clientId" json:"clientId"`
	Tier                 string             `bson:"tier" json:"tier"`
	Status               SubscriptionStatus `bson:"status" json:"status"`
	StripeCustomerID     string             `bson:"stripeCustomerId,omitempty" json:"-"`
	StripeSubscriptionID string             `bson:"stripeSubscriptionId,omitempty" json:"-"`
	CurrentPeriodStart   *time.Time         `bson:"currentPeriodStart,omitempty" json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd     *time.Time         `bson:"currentPeriodEnd,omitempty" json:"currentPeriodEnd,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}
