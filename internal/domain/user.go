package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
// Both roles live in the same collection; the role field and a handful of
// role-specific fields distinguish them.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"` // unique
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	Role          Role               `bson:"role" json:"role"`
	ProfilePicKey string             `bson:"profilePicKey,omitempty" json:"-"` // S3 object key
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	Title     string               `bson:"title,omitempty" json:"title,omitempty"`
	Location  string               `bson:"location,omitempty" json:"location,omitempty"`
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	TrainerID      *primitive.ObjectID  `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	StartingWeight float64              `bson:"startingWeight,omitempty" json:"startingWeight,omitempty"`
	Measurements   *Measurements        `bson:"measurements,omitempty" json:"measurements,omitempty"`
	WeightLog      []WeightEntry        `bson:"weightLog,omitempty" json:"weightLog,omitempty"`
	ActivePlanIDs  []primitive.ObjectID `bson:"activePlanIds,omitempty" json:"activePlanIds,omitempty"`

	// Subscription state mirrored from the billing provider for cheap reads.
	SubscriptionTier   string `bson:"subscriptionTier,omitempty" json:"subscriptionTier,omitempty"`
	SubscriptionStatus string `bson:"subscriptionStatus,omitempty" json:"subscriptionStatus,omitempty"`

	// --- Scheduling (both roles) ---
	// Denormalized views over the meetings collection. A Pending meeting has
	// a summary in both parties' meetingRequests; an Approved meeting has its
	// id in both parties' upcomingMeetingIds. Kept consistent transactionally
	// by the meeting service.
	MeetingRequests    []MeetingSummary     `bson:"meetingRequests,omitempty" json:"meetingRequests,omitempty"`
	UpcomingMeetingIDs []primitive.ObjectID `bson:"upcomingMeetingIds,omitempty" json:"upcomingMeetingIds,omitempty"`
	Notifications      []Notification       `bson:"notifications,omitempty" json:"notifications,omitempty"`
}

// Measurements holds a client's body measurements.
type Measurements struct {
	ChestBack string `bson:"chestBack" json:"chestBack"`
	RightArm  string `bson:"rightArm" json:"rightArm"`
	LeftArm   string `bson:"leftArm" json:"leftArm"`
	RightLeg  string `bson:"rightLeg" json:"rightLeg"`
	LeftLeg   string `bson:"leftLeg" json:"leftLeg"`
	Waist     string `bson:"waist" json:"waist"`
}

// WeightEntry is one point on a client's weight graph.
type WeightEntry struct {
	Date   time.Time `bson:"date" json:"date"`
	Weight float64   `bson:"weight" json:"weight"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}
