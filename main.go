package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"azhome-server/config"
	"azhome-server/database"
	"azhome-server/jobs"
	"azhome-server/middleware"
	"azhome-server/routes"
	"azhome-server/services"
	"azhome-server/utils"
	ws "azhome-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	limiterStop := make(chan struct{})
	defer close(limiterStop)
	middleware.StartRateLimiterCleanup(limiterStop)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8081"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "AZHome server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Chat hub for real-time message pushes
	hub := ws.NewHub()
	go hub.Run()

	// Outbound email queue
	mailer := services.NewSMTPMailer(config.AppConfig.SMTP)
	notifier := services.NewNotifier(mailer)
	notifier.Start()
	defer notifier.Stop()

	// Cloudinary client for profile pictures and worker documents
	uploads, err := utils.NewUploader()
	if err != nil {
		log.Fatal("Failed to initialize uploads:", err)
	}

	db := database.GetDB()
	availabilityService := services.NewAvailabilityService(db)
	bookingService := services.NewBookingService(db, notifier)
	reviewService := services.NewReviewService(db)
	chatService := services.NewChatService(db, hub)
	distanceService := services.NewDistanceService(config.AppConfig.Maps.APIKey)

	api := router.Group("/api")
	routes.RegisterAuthRoutes(api, notifier)
	routes.RegisterUserRoutes(api, uploads)
	routes.RegisterAvailabilityRoutes(api, availabilityService, bookingService)
	routes.RegisterBookingRoutes(api, bookingService)
	routes.RegisterReviewRoutes(api, reviewService)
	routes.RegisterChatRoutes(api, chatService, hub)
	routes.RegisterGeocodeRoutes(api, distanceService)

	// Daily booking reminders
	reminders := jobs.NewReminderJob(db, notifier)
	if err := reminders.Start(); err != nil {
		log.Fatal("Failed to start reminder job:", err)
	}
	defer reminders.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("AZHome server listening on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
