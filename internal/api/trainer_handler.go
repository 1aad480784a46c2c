package api

import (
	"errors"
	"net/http"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- DTOs ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

type CreatePlanRequest struct {
	Type        domain.PlanType  `json:"type" binding:"required,oneof=diet program"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Days        []domain.PlanDay `json:"days"`
}

type AssignPlanRequest struct {
	ClientID string `json:"clientId" binding:"required"`
}

type ProfilePicUploadRequest struct {
	ContentType string `json:"contentType"`
}

type ProfilePicConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handlers ---

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Tags Trainer
// @Security BearerAuth
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), trainerID, req.ClientEmail)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrClientNotRole) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrClientAlreadyAssigned) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add client.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients returns the trainer's roster.
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed clients.")
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// CreatePlan stores a new diet or program plan.
func (h *TrainerHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	plan, err := h.trainerService.CreatePlan(c.Request.Context(), trainerID, req.Type, req.Name, req.Description, req.Days)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create plan.")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// GetPlans lists the trainer's plans.
func (h *TrainerHandler) GetPlans(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	plans, err := h.trainerService.GetPlans(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		plans = []domain.Plan{}
	}

	c.JSON(http.StatusOK, plans)
}

// AssignPlan attaches one of the trainer's plans to a managed client.
func (h *TrainerHandler) AssignPlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.trainerService.AssignPlan(c.Request.Context(), trainerID, clientID, planID); err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanAccessDenied), errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign plan.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeletePlan removes one of the trainer's plans.
func (h *TrainerHandler) DeletePlan(c *gin.Context) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.trainerService.DeletePlan(c.Request.Context(), trainerID, planID); err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequestProfilePicUpload returns a presigned PUT URL for a profile picture.
// Available to both roles.
func (h *TrainerHandler) RequestProfilePicUpload(c *gin.Context) {
	var req ProfilePicUploadRequest
	_ = c.ShouldBindJSON(&req)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, key, err := h.trainerService.RequestProfilePicUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploadUrl": url, "objectKey": key})
}

// ConfirmProfilePic records the uploaded object key on the user.
func (h *TrainerHandler) ConfirmProfilePic(c *gin.Context) {
	var req ProfilePicConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.trainerService.ConfirmProfilePic(c.Request.Context(), userID, req.ObjectKey); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save profile picture.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
