package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingStatus type for the meeting lifecycle.
type MeetingStatus string

const (
	MeetingPending  MeetingStatus = "Pending"
	MeetingApproved MeetingStatus = "Approved"
	// Declined and Cancelled exist on the wire for historical reasons, but a
	// declined or cancelled meeting is deleted outright; no record is ever
	// stored with these statuses.
	MeetingDeclined  MeetingStatus = "Declined"
	MeetingCancelled MeetingStatus = "Cancelled"
)

// Wire formats for meeting dates and times. Clients send a calendar date and
// a 12-hour clock time; both are normalized into StartsAt at the boundary.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "3:04 PM"
)

var ErrInvalidSlot = errors.New("invalid meeting date or time")

// Meeting is the canonical scheduling record.
type Meeting struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Date         string             `bson:"date" json:"date"` // "2006-01-02"
	Time         string             `bson:"time" json:"time"` // "3:04 PM"
	StartsAt     time.Time          `bson:"startsAt" json:"startsAt"`
	Status       MeetingStatus      `bson:"status" json:"status"`
	TrainingType string             `bson:"trainingType" json:"trainingType"`
	IsRecurring  bool               `bson:"isRecurring" json:"isRecurring"`
	CreatedBy    Role               `bson:"createdBy" json:"createdBy"` // which party initiated
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MeetingSummary is the denormalized entry kept in both parties'
// meetingRequests lists while a meeting is Pending.
type MeetingSummary struct {
	MeetingID    primitive.ObjectID `bson:"meetingId" json:"meetingId"`
	Date         string             `bson:"date" json:"date"`
	Time         string             `bson:"time" json:"time"`
	Status       MeetingStatus      `bson:"status" json:"status"`
	TrainingType string             `bson:"trainingType" json:"trainingType"`
	IsRecurring  bool               `bson:"isRecurring" json:"isRecurring"`
	CreatedBy    Role               `bson:"createdBy" json:"createdBy"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

// Summary builds the denormalized request entry for this meeting.
func (m *Meeting) Summary() MeetingSummary {
	return MeetingSummary{
		MeetingID:    m.ID,
		Date:         m.Date,
		Time:         m.Time,
		Status:       m.Status,
		TrainingType: m.TrainingType,
		IsRecurring:  m.IsRecurring,
		CreatedBy:    m.CreatedBy,
		Description:  m.Description,
	}
}

// ParseSlot combines a wire-format date and 12-hour clock time into a single
// UTC instant. The clock string is tolerant of lowercase am/pm markers.
func ParseSlot(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, ErrInvalidSlot
	}
	clock = strings.ToUpper(strings.TrimSpace(clock))
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return t, nil
}
