package api

import (
	"net/http"

	"github.com/daniyal-sudo/heraklean-backend/internal/config"
	"github.com/daniyal-sudo/heraklean-backend/internal/domain"
	"github.com/daniyal-sudo/heraklean-backend/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authService service.AuthService,
	meetingService service.MeetingService,
	trainerService service.TrainerService,
	clientService service.ClientService,
	subscriptionService service.SubscriptionService,
) {

	authHandler := NewAuthHandler(authService)
	meetingHandler := NewMeetingHandler(meetingService)
	trainerHandler := NewTrainerHandler(trainerService)
	clientHandler := NewClientHandler(clientService)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService)

	authMiddleware := AuthMiddleware(cfg.JWT.Secret)

	router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Stripe authenticates webhook calls with its signature header, so
		// this stays outside the JWT middleware.
		apiV1.POST("/billing/webhook", subscriptionHandler.HandleWebhook)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Meeting Routes (both roles; service enforces party checks) ---
		meetingGroup := protected.Group("/meetings")
		{
			meetingGroup.POST("/requests", meetingHandler.CreateMeetingRequest)
			meetingGroup.POST("/requests/:id/approve", meetingHandler.ApproveMeetingRequest)
			meetingGroup.PUT("/:id/reschedule", RoleMiddleware(domain.RoleTrainer), meetingHandler.RescheduleMeeting)
			meetingGroup.POST("/:id/cancel", meetingHandler.CancelMeeting)
		}

		// --- Profile picture (both roles) ---
		protected.POST("/profile-pic/upload-url", trainerHandler.RequestProfilePicUpload)
		protected.POST("/profile-pic/confirm", trainerHandler.ConfirmProfilePic)
		protected.GET("/profile-pic", clientHandler.GetProfilePicURL)

		// --- Notifications (both roles) ---
		protected.GET("/notifications", clientHandler.GetNotifications)
		protected.POST("/notifications/:id/read", clientHandler.MarkNotificationRead)

		// --- Trainer Specific Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerGroup.GET("/clients", trainerHandler.GetManagedClients)

			trainerGroup.POST("/plans", trainerHandler.CreatePlan)
			trainerGroup.GET("/plans", trainerHandler.GetPlans)
			trainerGroup.POST("/plans/:planId/assign", trainerHandler.AssignPlan)
			trainerGroup.DELETE("/plans/:planId", trainerHandler.DeletePlan)

			trainerGroup.GET("/meetings/upcoming", meetingHandler.GetUpcomingMeetings)
		}

		// --- Client Specific Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/meetings", meetingHandler.GetClientMeetings)

			clientGroup.POST("/weight", clientHandler.AddWeightEntry)
			clientGroup.GET("/weight", clientHandler.GetWeightLog)
			clientGroup.PUT("/measurements", clientHandler.UpdateMeasurements)
			clientGroup.GET("/plans", clientHandler.GetActivePlans)

			clientGroup.POST("/billing/checkout", subscriptionHandler.CreateCheckoutSession)
			clientGroup.GET("/billing/subscription", subscriptionHandler.GetSubscription)
		}
	}
}
