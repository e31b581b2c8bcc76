package routes

import (
	"content-approval-api/controllers"
	"content-approval-api/middleware"
	"content-approval-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Content Approval API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/history", controllers.GetSubmissionHistory)

				// Requesters create and rework their own submissions
				submissions.POST("", middleware.RequireRole(models.RoleRequester, models.RoleAdmin), controllers.CreateSubmission)
				submissions.POST("/:id/comments", middleware.RequireRole(models.RoleRequester, models.RoleAdmin), controllers.AddRevisionContent)
				submissions.POST("/:id/resubmit", middleware.RequireRole(models.RoleRequester, models.RoleAdmin), controllers.ResubmitSubmission)

				// Approvers decide
				decide := middleware.RequireRole(models.RoleApprover, models.RoleAdmin)
				submissions.POST("/:id/approve", decide, controllers.ApproveSubmission)
				submissions.POST("/:id/reject", decide, controllers.RejectSubmission)
				submissions.POST("/:id/request-revision", decide, controllers.RequestRevision)
			}

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
			protected.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/users", controllers.GetUsers)
				admin.POST("/users", controllers.CreateUser)
				admin.PUT("/users/:id", controllers.UpdateUser)
				admin.PUT("/users/:id/role", controllers.UpdateUserRole)
				admin.PUT("/users/:id/deactivate", controllers.DeactivateUser)
				admin.PUT("/users/:id/activate", controllers.ActivateUser)

				// Audit integrity check
				admin.GET("/submissions/:id/verify", controllers.VerifySubmissionHistory)

				// Manual trigger for the due-date reminder pass
				admin.POST("/jobs/due-date-reminders", controllers.RunDueDateReminders)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
