package routes

import (
	"insulation-crm-api/controllers"
	"insulation-crm-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Insulation CRM API is running",
				})
			})

			// SSE delivery channel authenticates itself so it can answer
			// failures in event-stream framing instead of a JSON 401.
			public.GET("/notifications/stream", controllers.StreamNotifications)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Counties with cached open-client counts
			protected.GET("/counties", controllers.GetCounties)

			// Clients
			clients := protected.Group("/clients")
			{
				clients.POST("", controllers.CreateClient)
				clients.GET("/my-requests", controllers.GetMyRequests)
				clients.GET("/:id", controllers.GetClient)
				clients.PUT("/:id", controllers.UpdateClient)

				// Only admins decide approvals and reopen closed clients
				clients.POST("/:id/approve", middleware.RequireAdmin(), controllers.ApproveClient)
				clients.POST("/:id/reject", middleware.RequireAdmin(), controllers.RejectClient)
				clients.POST("/:id/reopen", middleware.RequireAdmin(), controllers.ReopenClient)

				// Submitter-only; the service enforces ownership
				clients.POST("/:id/resubmit", controllers.ResubmitClient)
			}

			// Approval queue
			protected.GET("/approvals/pending", middleware.RequireAdmin(), controllers.GetPendingClients)

			// Notification counters and view watermarks
			notifications := protected.Group("/notifications")
			{
				notifications.GET("/counts", controllers.GetNotificationCounts)
				notifications.POST("/mark-viewed", controllers.MarkClientViewed)
				notifications.POST("/mark-viewed-county", controllers.MarkCountyClientsViewed)
			}

			// Approval outcome notifications
			approvalNotifications := protected.Group("/approval-notifications")
			{
				approvalNotifications.GET("", controllers.GetApprovalNotifications)
				approvalNotifications.POST("/:id/read", controllers.MarkApprovalNotificationRead)
				approvalNotifications.POST("/read-all", controllers.MarkAllApprovalNotificationsRead)
			}
		}
	}
}
