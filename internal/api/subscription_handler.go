package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/daniyal-sudo/heraklean-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// --- DTOs ---

type CheckoutRequest struct {
	PriceID string `json:"priceId" binding:"required"`
	Tier    string `json:"tier" binding:"required"`
}

// --- Handlers ---

// CreateCheckoutSession starts a Stripe subscription checkout for the
// authenticated client and returns the hosted checkout URL.
func (h *SubscriptionHandler) CreateCheckoutSession(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, err := h.subscriptionService.CreateCheckoutSession(c.Request.Context(), clientID, req.PriceID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBillingNotConfigured):
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create checkout session.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkoutUrl": url})
}

// HandleWebhook receives Stripe events. The endpoint is public; the
// Stripe-Signature header is the authentication.
func (h *SubscriptionHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 65536))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unable to read request body.")
		return
	}

	err = h.subscriptionService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebhook) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		// Stripe retries on 5xx, which is what we want for transient failures.
		abortWithError(c, http.StatusInternalServerError, "Failed to process webhook.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetSubscription returns the authenticated client's subscription record.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			abortWithError(c, http.StatusNotFound, "No subscription found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve subscription.")
		return
	}

	c.JSON(http.StatusOK, sub)
}
