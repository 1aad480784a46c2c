package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is an entry in a user's notification feed. Structured from
// the start so read-tracking works the same for trainers and clients.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	Read      bool               `bson:"read" json:"read"`
}

// NewNotification builds a fresh unread notification.
func NewNotification(message string) Notification {
	return Notification{
		ID:        primitive.NewObjectID(),
		Message:   message,
		CreatedAt: time.Now().UTC(),
		Read:      false,
	}
}
