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

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type AddWeightRequest struct {
	Weight float64    `json:"weight" binding:"required,gt=0"`
	Date   *time.Time `json:"date"`
}

type UpdateMeasurementsRequest struct {
	ChestBack string `json:"chestBack"`
	RightArm  string `json:"rightArm"`
	LeftArm   string `json:"leftArm"`
	RightLeg  string `json:"rightLeg"`
	LeftLeg   string `json:"leftLeg"`
	Waist     string `json:"waist"`
}

// --- Handlers ---

// AddWeightEntry appends a point to the client's weight graph.
func (h *ClientHandler) AddWeightEntry(c *gin.Context) {
	var req AddWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	at := time.Time{}
	if req.Date != nil {
		at = *req.Date
	}
	if err := h.clientService.AddWeightEntry(c.Request.Context(), clientID, req.Weight, at); err != nil {
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetWeightLog returns the client's starting weight and weight graph.
func (h *ClientHandler) GetWeightLog(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	starting, entries, err := h.clientService.GetWeightLog(c.Request.Context(), clientID)
	if err != nil {
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"startingWeight": starting, "weightLog": entries})
}

// UpdateMeasurements replaces the client's body measurements.
func (h *ClientHandler) UpdateMeasurements(c *gin.Context) {
	var req UpdateMeasurementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	m := domain.Measurements{
		ChestBack: req.ChestBack,
		RightArm:  req.RightArm,
		LeftArm:   req.LeftArm,
		RightLeg:  req.RightLeg,
		LeftLeg:   req.LeftLeg,
		Waist:     req.Waist,
	}
	if err := h.clientService.UpdateMeasurements(c.Request.Context(), clientID, m); err != nil {
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetActivePlans returns the plans currently assigned to the client.
func (h *ClientHandler) GetActivePlans(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	plans, err := h.clientService.GetActivePlans(c.Request.Context(), clientID)
	if err != nil {
		h.mapClientError(c, err)
		return
	}
	if plans == nil {
		plans = []domain.Plan{}
	}

	c.JSON(http.StatusOK, plans)
}

// GetNotifications returns the acting user's notification feed. Works for
// both roles.
func (h *ClientHandler) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	notifications, err := h.clientService.GetNotifications(c.Request.Context(), userID)
	if err != nil {
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// MarkNotificationRead flips the read flag on one notification.
func (h *ClientHandler) MarkNotificationRead(c *gin.Context) {
	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID format.")
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.clientService.MarkNotificationRead(c.Request.Context(), userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProfilePicURL returns a presigned download URL for the user's picture.
func (h *ClientHandler) GetProfilePicURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, err := h.clientService.GetProfilePicURL(c.Request.Context(), userID)
	if err != nil {
		h.mapClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profilePicUrl": url})
}

func (h *ClientHandler) mapClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClientNotRole):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process request.")
	}
}
