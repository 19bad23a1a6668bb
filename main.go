package main

import (
	"log"

	"quizsystem/config"
	"quizsystem/handlers"
	"quizsystem/logger"
	"quizsystem/middleware"
	"quizsystem/routes"
	"quizsystem/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.Mode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		appLog.Fatalw("failed to connect to database", "error", err)
	}

	// Migrate schema and uniqueness indexes
	if err := config.Migrate(db); err != nil {
		appLog.Fatalw("failed to migrate database", "error", err)
	}

	// Initialize Redis (QR payload cache)
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	userService := services.NewUserService(db, appLog)
	quizService := services.NewQuizService(db, redisClient, appLog)
	participationService := services.NewParticipationService(db, appLog)
	statsService := services.NewStatsService(db, appLog)
	qrService := services.NewQRService(db, redisClient, appLog, cfg.FrontendURL)
	uploadService := services.NewUploadService(cfg.UploadDir, appLog)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, participationService)
	quizHandler := handlers.NewQuizHandler(quizService)
	participationHandler := handlers.NewParticipationHandler(participationService)
	statsHandler := handlers.NewStatsHandler(statsService)
	mediaHandler := handlers.NewMediaHandler(uploadService, qrService)

	// Setup Gin router
	if cfg.Mode == "production" || cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, db,
		authService, authHandler, userHandler, quizHandler,
		participationHandler, statsHandler, mediaHandler)

	// Start server
	appLog.Infow("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		appLog.Fatalw("server exited", "error", err)
	}
}
