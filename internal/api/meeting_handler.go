package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeetingHandler exposes the meeting scheduling workflow.
type MeetingHandler struct {
	meetingService service.MeetingService
}

func NewMeetingHandler(meetingService service.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// --- DTOs ---

type CreateMeetingRequestBody struct {
	ClientID     string `json:"clientId" binding:"required"`
	TrainerID    string `json:"trainerId" binding:"required"`
	Date         string `json:"date" binding:"required"` // "2006-01-02"
	Time         string `json:"time" binding:"required"` // "3:04 PM"
	TrainingType string `json:"trainingType" binding:"required"`
	IsRecurring  bool   `json:"isRecurring"`
	Description  string `json:"description"`
}

type RescheduleMeetingBody struct {
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
}

type CancelMeetingBody struct {
	Reason string `json:"reason"`
}

type MeetingResponse struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	TrainerID    string    `json:"trainerId"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	StartsAt     time.Time `json:"startsAt"`
	Status       string    `json:"status"`
	TrainingType string    `json:"trainingType"`
	IsRecurring  bool      `json:"isRecurring"`
	CreatedBy    string    `json:"createdBy"`
	Description  string    `json:"description,omitempty"`
}

func mapMeetingToResponse(m *domain.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:           m.ID.Hex(),
		ClientID:     m.ClientID.Hex(),
		TrainerID:    m.TrainerID.Hex(),
		Date:         m.Date,
		Time:         m.Time,
		StartsAt:     m.StartsAt,
		Status:       string(m.Status),
		TrainingType: m.TrainingType,
		IsRecurring:  m.IsRecurring,
		CreatedBy:    string(m.CreatedBy),
		Description:  m.Description,
	}
}

// --- Handlers ---

// CreateMeetingRequest creates a Pending meeting request between a client and
// a trainer. The initiating party is taken from the token, and must be one of
// the two parties named in the body.
func (h *MeetingHandler) CreateMeetingRequest(c *gin.Context) {
	var req CreateMeetingRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format.")
		return
	}

	// The requester must be one of the two parties.
	if (role == domain.RoleTrainer && actorID != trainerID) || (role == domain.RoleClient && actorID != clientID) {
		abortWithError(c, http.StatusForbidden, "You can only request meetings for yourself.")
		return
	}

	meeting, err := h.meetingService.CreateMeetingRequest(c.Request.Context(), service.CreateMeetingInput{
		ClientID:     clientID,
		TrainerID:    trainerID,
		Date:         req.Date,
		Time:         req.Time,
		TrainingType: req.TrainingType,
		IsRecurring:  req.IsRecurring,
		Description:  req.Description,
		CreatedBy:    role,
	})
	if err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "meeting": mapMeetingToResponse(meeting)})
}

// ApproveMeetingRequest approves a pending request held by the acting user.
func (h *MeetingHandler) ApproveMeetingRequest(c *gin.Context) {
	meetingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meeting ID format.")
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	meeting, err := h.meetingService.ApproveMeetingRequest(c.Request.Context(), actorID, meetingID)
	if err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "meeting": mapMeetingToResponse(meeting)})
}

// RescheduleMeeting moves a meeting to a new slot. Trainer only.
func (h *MeetingHandler) RescheduleMeeting(c *gin.Context) {
	meetingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meeting ID format.")
		return
	}
	var req RescheduleMeetingBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	meeting, err := h.meetingService.RescheduleMeeting(c.Request.Context(), meetingID, trainerID, req.NewDate, req.NewTime)
	if err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "meeting": mapMeetingToResponse(meeting)})
}

// CancelMeeting cancels a meeting on behalf of either owning party.
func (h *MeetingHandler) CancelMeeting(c *gin.Context) {
	meetingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meeting ID format.")
		return
	}
	var req CancelMeetingBody
	_ = c.ShouldBindJSON(&req) // reason is optional; an empty body is fine
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.meetingService.CancelMeeting(c.Request.Context(), meetingID, actorID, req.Reason); err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetUpcomingMeetings returns the authenticated trainer's approved meetings.
func (h *MeetingHandler) GetUpcomingMeetings(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.GetUpcomingMeetings(c.Request.Context(), trainerID)
	if err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "meetings": meetings})
}

// GetClientMeetings returns the authenticated client's meetings and requests.
func (h *MeetingHandler) GetClientMeetings(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.GetClientMeetings(c.Request.Context(), clientID)
	if err != nil {
		h.mapMeetingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"upcomingMeetings": meetings.Upcoming,
		"meetingRequests":  meetings.Requests,
	})
}

// mapMeetingError translates service errors into kind-appropriate statuses.
func (h *MeetingHandler) mapMeetingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMeetingNotFound),
		errors.Is(err, service.ErrMeetingPartyMissing),
		errors.Is(err, service.ErrNoMatchingRequest):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMeetingAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSlotConflict),
		errors.Is(err, service.ErrMeetingNotPending):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSlotInPast),
		errors.Is(err, domain.ErrInvalidSlot):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process meeting operation.")
	}
}
