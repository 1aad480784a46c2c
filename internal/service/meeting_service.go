package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/repository"
	"github.com/daniyal-sudo/heraklean-backend/internal/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrMeetingPartyMissing = errors.New("client or trainer not found")
	ErrSlotInPast          = errors.New("the meeting time must be in the future")
	ErrSlotConflict        = errors.New("meeting time overlaps with an existing meeting")
	ErrMeetingAccessDenied = errors.New("not authorized to modify this meeting")
	ErrNoMatchingRequest   = errors.New("no matching meeting request for this user")
	ErrMeetingNotPending   = errors.New("meeting is not awaiting approval")
)

// CreateMeetingInput carries the fields of a new meeting request.
type CreateMeetingInput struct {
	ClientID     primitive.ObjectID
	TrainerID    primitive.ObjectID
	Date         string // "2006-01-02"
	Time         string // "3:04 PM"
	TrainingType string
	IsRecurring  bool
	Description  string
	CreatedBy    domain.Role
}

// UpcomingMeeting is a trainer-dashboard view of one approved meeting.
type UpcomingMeeting struct {
	MeetingID        string `json:"meetingId"`
	ClientName       string `json:"clientName"`
	ClientProfilePic string `json:"clientProfilePic,omitempty"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	TrainingType     string `json:"trainingType"`
	IsRecurring      bool   `json:"isRecurring"`
	Status           string `json:"status"`
}

// ClientMeetingView is a client-side view of one meeting with trainer details.
type ClientMeetingView struct {
	MeetingID    string `json:"meetingId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Status       string `json:"status"`
	TrainingType string `json:"trainingType"`
	IsRecurring  bool   `json:"isRecurring"`
	TrainerName  string `json:"trainerName"`
	TrainerEmail string `json:"trainerEmail"`
}

// ClientMeetings groups a client's approved meetings and open requests.
type ClientMeetings struct {
	Upcoming []ClientMeetingView `json:"upcoming"`
	Requests []ClientMeetingView `json:"requests"`
}

// --- Service Interface ---
type MeetingService interface {
	CreateMeetingRequest(ctx context.Context, input CreateMeetingInput) (*domain.Meeting, error)
	ApproveMeetingRequest(ctx context.Context, approverID, meetingID primitive.ObjectID) (*domain.Meeting, error)
	RescheduleMeeting(ctx context.Context, meetingID, trainerID primitive.ObjectID, newDate, newTime string) (*domain.Meeting, error)
	CancelMeeting(ctx context.Context, meetingID, actorID primitive.ObjectID, reason string) error
	GetUpcomingMeetings(ctx context.Context, trainerID primitive.ObjectID) ([]UpcomingMeeting, error)
	GetClientMeetings(ctx context.Context, clientID primitive.ObjectID) (*ClientMeetings, error)
}

// meetingService implements the MeetingService interface. Every mutation
// spans the meeting record plus both parties' denormalized lists, so each
// one runs inside a single transaction via the TxnRunner.
type meetingService struct {
	userRepo    repository.UserRepository
	meetingRepo repository.MeetingRepository
	txn         repository.TxnRunner
	fileStorage storage.FileStorage
	conflicts   conflictChecker
	now         func() time.Time
	log         *logrus.Logger
}

// NewMeetingService creates a new instance of meetingService. fileStorage
// may be nil; profile picture URLs are then omitted from dashboard views.
func NewMeetingService(
	userRepo repository.UserRepository,
	meetingRepo repository.MeetingRepository,
	txn repository.TxnRunner,
	fileStorage storage.FileStorage,
	conflictWindow time.Duration,
	log *logrus.Logger,
) MeetingService {
	if log == nil {
		log = logrus.New()
	}
	return &meetingService{
		userRepo:    userRepo,
		meetingRepo: meetingRepo,
		txn:         txn,
		fileStorage: fileStorage,
		conflicts:   newConflictChecker(conflictWindow),
		now:         func() time.Time { return time.Now().UTC() },
		log:         log,
	}
}

// CreateMeetingRequest validates the slot, checks the trainer's calendar for
// conflicts, then atomically inserts the Pending meeting, mirrors its
// summary into both parties' request lists, and notifies the counter-party.
func (s *meetingService) CreateMeetingRequest(ctx context.Context, input CreateMeetingInput) (*domain.Meeting, error) {
	if input.ClientID == primitive.NilObjectID || input.TrainerID == primitive.NilObjectID {
		return nil, errors.New("client ID and trainer ID are required")
	}
	if input.TrainingType == "" {
		return nil, errors.New("training type is required")
	}
	if input.CreatedBy != domain.RoleTrainer && input.CreatedBy != domain.RoleClient {
		return nil, errors.New("createdBy must be trainer or client")
	}

	startsAt, err := domain.ParseSlot(input.Date, input.Time)
	if err != nil {
		return nil, err
	}
	if !startsAt.After(s.now()) {
		return nil, ErrSlotInPast
	}

	client, trainer, err := s.loadParties(ctx, input.ClientID, input.TrainerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.meetingRepo.GetByTrainerAndDate(ctx, trainer.ID, input.Date)
	if err != nil {
		return nil, err
	}
	if s.conflicts.hasConflict(existing, startsAt) {
		return nil, ErrSlotConflict
	}

	meeting := &domain.Meeting{
		ClientID:     client.ID,
		TrainerID:    trainer.ID,
		Date:         input.Date,
		Time:         input.Time,
		StartsAt:     startsAt,
		Status:       domain.MeetingPending,
		TrainingType: input.TrainingType,
		IsRecurring:  input.IsRecurring,
		CreatedBy:    input.CreatedBy,
		Description:  input.Description,
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.meetingRepo.Create(ctx, meeting); err != nil {
			return err
		}
		summary := meeting.Summary()
		if err := s.userRepo.PushMeetingRequest(ctx, client.ID, summary); err != nil {
			return err
		}
		if err := s.userRepo.PushMeetingRequest(ctx, trainer.ID, summary); err != nil {
			return err
		}

		// Notify the party who did not initiate the request.
		var counterParty primitive.ObjectID
		var message string
		if input.CreatedBy == domain.RoleTrainer {
			counterParty = client.ID
			message = fmt.Sprintf("New meeting request from %s for %s at %s", trainer.Name, meeting.Date, meeting.Time)
		} else {
			counterParty = trainer.ID
			message = fmt.Sprintf("New meeting request from %s for %s at %s", client.Name, meeting.Date, meeting.Time)
		}
		return s.userRepo.PushNotification(ctx, counterParty, domain.NewNotification(message))
	})
	if err != nil {
		s.log.WithError(err).WithField("trainerId", trainer.ID.Hex()).Error("create meeting request failed")
		return nil, err
	}

	return meeting, nil
}

// ApproveMeetingRequest transitions a Pending meeting to Approved in place.
// Only the party that did not create the request may approve it, and only
// while their own request list still holds the matching summary.
func (s *meetingService) ApproveMeetingRequest(ctx context.Context, approverID, meetingID primitive.ObjectID) (*domain.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}

	// The creating party cannot approve its own request.
	var expectedApprover primitive.ObjectID
	if meeting.CreatedBy == domain.RoleTrainer {
		expectedApprover = meeting.ClientID
	} else {
		expectedApprover = meeting.TrainerID
	}
	if approverID != expectedApprover {
		return nil, ErrMeetingAccessDenied
	}

	approver, err := s.userRepo.GetByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingPartyMissing
		}
		return nil, err
	}
	if !holdsRequest(approver, meetingID) {
		return nil, ErrNoMatchingRequest
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		// CAS on the status; a concurrent approval or cancellation loses here.
		if err := s.meetingRepo.UpdateStatus(ctx, meetingID, domain.MeetingPending, domain.MeetingApproved); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMeetingNotPending
			}
			return err
		}
		for _, partyID := range []primitive.ObjectID{meeting.ClientID, meeting.TrainerID} {
			if err := s.userRepo.PullMeetingRefs(ctx, partyID, meetingID); err != nil {
				return err
			}
			if err := s.userRepo.PushUpcomingMeeting(ctx, partyID, meetingID); err != nil {
				return err
			}
		}
		message := fmt.Sprintf("Meeting approved for %s at %s", meeting.Date, meeting.Time)
		if err := s.userRepo.PushNotification(ctx, meeting.ClientID, domain.NewNotification(message)); err != nil {
			return err
		}
		return s.userRepo.PushNotification(ctx, meeting.TrainerID, domain.NewNotification(message))
	})
	if err != nil {
		if !errors.Is(err, ErrMeetingNotPending) {
			s.log.WithError(err).WithField("meetingId", meetingID.Hex()).Error("approve meeting request failed")
		}
		return nil, err
	}

	meeting.Status = domain.MeetingApproved
	return meeting, nil
}

// RescheduleMeeting replaces a meeting with a new record at the new slot,
// preserving its status. Only the owning trainer may reschedule.
func (s *meetingService) RescheduleMeeting(ctx context.Context, meetingID, trainerID primitive.ObjectID, newDate, newTime string) (*domain.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, err
	}
	if meeting.TrainerID != trainerID {
		return nil, ErrMeetingAccessDenied
	}

	// Fall back to the original slot fields when a new value is not supplied.
	date := meeting.Date
	if newDate != "" {
		date = newDate
	}
	clock := meeting.Time
	if newTime != "" {
		clock = newTime
	}
	startsAt, err := domain.ParseSlot(date, clock)
	if err != nil {
		return nil, err
	}

	// The meeting being moved does not conflict with itself.
	existing, err := s.meetingRepo.GetByTrainerAndDate(ctx, trainerID, date)
	if err != nil {
		return nil, err
	}
	others := existing[:0:0]
	for _, m := range existing {
		if m.ID != meetingID {
			others = append(others, m)
		}
	}
	if s.conflicts.hasConflict(others, startsAt) {
		return nil, ErrSlotConflict
	}

	replacement := &domain.Meeting{
		ClientID:     meeting.ClientID,
		TrainerID:    meeting.TrainerID,
		Date:         date,
		Time:         clock,
		StartsAt:     startsAt,
		Status:       meeting.Status,
		TrainingType: meeting.TrainingType,
		IsRecurring:  meeting.IsRecurring,
		CreatedBy:    meeting.CreatedBy,
		Description:  meeting.Description,
	}
	if replacement.Status == domain.MeetingPending {
		// A rescheduled request reads as coming from the trainer.
		replacement.CreatedBy = domain.RoleTrainer
	}

	parties := []primitive.ObjectID{meeting.ClientID, meeting.TrainerID}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
			return err
		}
		for _, partyID := range parties {
			if err := s.userRepo.PullMeetingRefs(ctx, partyID, meetingID); err != nil {
				return err
			}
		}
		if _, err := s.meetingRepo.Create(ctx, replacement); err != nil {
			return err
		}

		var message string
		if replacement.Status == domain.MeetingApproved {
			message = fmt.Sprintf("Meeting rescheduled to %s at %s", date, clock)
		} else {
			message = fmt.Sprintf("Meeting request rescheduled to %s at %s", date, clock)
		}
		for _, partyID := range parties {
			if replacement.Status == domain.MeetingApproved {
				if err := s.userRepo.PushUpcomingMeeting(ctx, partyID, replacement.ID); err != nil {
					return err
				}
			} else {
				if err := s.userRepo.PushMeetingRequest(ctx, partyID, replacement.Summary()); err != nil {
					return err
				}
			}
			if err := s.userRepo.PushNotification(ctx, partyID, domain.NewNotification(message)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("meetingId", meetingID.Hex()).Error("reschedule meeting failed")
		return nil, err
	}

	return replacement, nil
}

// CancelMeeting deletes the meeting and scrubs it from both parties' lists.
// Either owning party may cancel; deletion is terminal.
func (s *meetingService) CancelMeeting(ctx context.Context, meetingID, actorID primitive.ObjectID, reason string) error {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeetingNotFound
		}
		return err
	}
	if actorID != meeting.ClientID && actorID != meeting.TrainerID {
		return ErrMeetingAccessDenied
	}

	message := fmt.Sprintf("Meeting on %s at %s has been cancelled.", meeting.Date, meeting.Time)
	if reason != "" {
		message += " Reason: " + reason
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
			return err
		}
		for _, partyID := range []primitive.ObjectID{meeting.ClientID, meeting.TrainerID} {
			if err := s.userRepo.PullMeetingRefs(ctx, partyID, meetingID); err != nil {
				return err
			}
			if err := s.userRepo.PushNotification(ctx, partyID, domain.NewNotification(message)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("meetingId", meetingID.Hex()).Error("cancel meeting failed")
	}
	return err
}

// GetUpcomingMeetings returns the trainer's approved meetings on or after
// today, joined with client name and a presigned profile picture URL.
func (s *meetingService) GetUpcomingMeetings(ctx context.Context, trainerID primitive.ObjectID) ([]UpcomingMeeting, error) {
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingPartyMissing
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrMeetingAccessDenied
	}

	from := s.now().Truncate(24 * time.Hour)
	meetings, err := s.meetingRepo.GetUpcomingByTrainer(ctx, trainerID, from)
	if err != nil {
		return nil, err
	}

	clients := make(map[primitive.ObjectID]*domain.User)
	result := make([]UpcomingMeeting, 0, len(meetings))
	for _, m := range meetings {
		client, ok := clients[m.ClientID]
		if !ok {
			client, err = s.userRepo.GetByID(ctx, m.ClientID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Dangling client reference; skip rather than fail the view.
					s.log.WithField("meetingId", m.ID.Hex()).Warn("meeting references missing client")
					continue
				}
				return nil, err
			}
			clients[m.ClientID] = client
		}

		entry := UpcomingMeeting{
			MeetingID:    m.ID.Hex(),
			ClientName:   client.Name,
			Date:         m.Date,
			Time:         m.Time,
			TrainingType: m.TrainingType,
			IsRecurring:  m.IsRecurring,
			Status:       string(m.Status),
		}
		if s.fileStorage != nil && client.ProfilePicKey != "" {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, client.ProfilePicKey, 0)
			if err == nil {
				entry.ClientProfilePic = url
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// GetClientMeetings returns the client's approved meetings and open
// requests, each joined with trainer details.
func (s *meetingService) GetClientMeetings(ctx context.Context, clientID primitive.ObjectID) (*ClientMeetings, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingPartyMissing
		}
		return nil, err
	}

	upcoming, err := s.meetingViews(ctx, client.UpcomingMeetingIDs)
	if err != nil {
		return nil, err
	}

	requestIDs := make([]primitive.ObjectID, 0, len(client.MeetingRequests))
	for _, r := range client.MeetingRequests {
		requestIDs = append(requestIDs, r.MeetingID)
	}
	requests, err := s.meetingViews(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	return &ClientMeetings{Upcoming: upcoming, Requests: requests}, nil
}

func (s *meetingService) meetingViews(ctx context.Context, ids []primitive.ObjectID) ([]ClientMeetingView, error) {
	meetings, err := s.meetingRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	trainers := make(map[primitive.ObjectID]*domain.User)
	views := make([]ClientMeetingView, 0, len(meetings))
	for _, m := range meetings {
		view := ClientMeetingView{
			MeetingID:    m.ID.Hex(),
			Date:         m.Date,
			Time:         m.Time,
			Status:       string(m.Status),
			TrainingType: m.TrainingType,
			IsRecurring:  m.IsRecurring,
		}
		trainer, ok := trainers[m.TrainerID]
		if !ok {
			trainer, err = s.userRepo.GetByID(ctx, m.TrainerID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			trainers[m.TrainerID] = trainer
		}
		if trainer != nil {
			view.TrainerName = trainer.Name
			view.TrainerEmail = trainer.Email
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *meetingService) loadParties(ctx context.Context, clientID, trainerID primitive.ObjectID) (*domain.User, *domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMeetingPartyMissing
		}
		return nil, nil, err
	}
	trainer, err := s.userRepo.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMeetingPartyMissing
		}
		return nil, nil, err
	}
	if !client.IsClient() || !trainer.IsTrainer() {
		return nil, nil, ErrMeetingPartyMissing
	}
	return client, trainer, nil
}

func holdsRequest(user *domain.User, meetingID primitive.ObjectID) bool {
	for _, r := range user.MeetingRequests {
		if r.MeetingID == meetingID {
			return true
		}
	}
	return false
}
