package routes

import (
	"net/http"
	"time"

	"quizsystem/handlers"
	"quizsystem/middleware"
	"quizsystem/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	quizHandler *handlers.QuizHandler,
	participationHandler *handlers.ParticipationHandler,
	statsHandler *handlers.StatsHandler,
	mediaHandler *handlers.MediaHandler,
) {
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public surface: registration, quiz taking and QR lookup.
		api.POST("/users", userHandler.Create)
		api.GET("/users/by-uni/:uni", userHandler.GetByUni)
		api.GET("/users/by-uni/:uni/participations", userHandler.Participations)
		api.GET("/users/by-uni/:uni/quiz/:quizId/status", participationHandler.Status)

		api.GET("/quizzes", quizHandler.List)
		api.GET("/quizzes/:id", quizHandler.GetByID)
		api.GET("/generate-qr/:id", mediaHandler.GenerateQR)

		participate := api.Group("/participate")
		{
			participate.POST("/:id", participationHandler.Start)
			participate.POST("/:id/submit", participationHandler.Submit)
			participate.POST("/:id/complete", participationHandler.Complete)
		}

		// Admin surface
		protected := api.Group("/")
		protected.Use(middleware.JWTAuth(authService))
		{
			protected.GET("/auth/profile", authHandler.Profile)

			protected.GET("/users", userHandler.List)
			protected.GET("/users/search", userHandler.Search)
			protected.GET("/users/:id", userHandler.GetByID)
			protected.PUT("/users/:id", userHandler.Update)
			protected.DELETE("/users/:id", userHandler.Delete)

			protected.POST("/quizzes", quizHandler.Create)
			protected.GET("/quizzes/count", quizHandler.Counts)
			protected.GET("/quizzes/search", quizHandler.Search)
			protected.POST("/quizzes/bulk-toggle", quizHandler.BulkToggle)
			protected.DELETE("/quizzes/bulk-delete", quizHandler.BulkDelete)
			protected.PUT("/quizzes/:id", quizHandler.Update)
			protected.DELETE("/quizzes/:id", quizHandler.Delete)
			protected.POST("/quizzes/:id/questions", quizHandler.AddQuestion)
			protected.GET("/quizzes/:id/responses", statsHandler.QuizResponses)

			protected.GET("/questions/:id", quizHandler.GetQuestion)
			protected.PUT("/questions/:id", quizHandler.UpdateQuestion)
			protected.DELETE("/questions/:id", quizHandler.DeleteQuestion)

			protected.GET("/participations", statsHandler.ListParticipations)
			protected.GET("/participations/:id/responses", statsHandler.ParticipationResponses)
			protected.DELETE("/participations/:id", participationHandler.Delete)

			protected.GET("/statistics/dashboard", statsHandler.Dashboard)
			protected.GET("/statistics/quiz/:id", statsHandler.Quiz)

			protected.POST("/upload-image", mediaHandler.UploadImage)
		}

		// Health check pings the database.
		api.GET("/health", func(c *gin.Context) {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.Ping()
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status":    "healthy",
				"database":  "connected",
				"timestamp": time.Now().UTC(),
			})
		})
	}

	// Uploaded images are served directly.
	router.Static("/static", "./static")
}
