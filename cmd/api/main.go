package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"content-approval-api/config"
	"content-approval-api/controllers"
	"content-approval-api/middleware"
	"content-approval-api/monitor"
	"content-approval-api/routes"
	"content-approval-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize database and services
	config.InitDB()
	controllers.InitServices(config.DB)

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router)

	// Ops status page and log tail (disabled unless MONITOR_TOKEN is set)
	monitor.RegisterMonitorPage(router)
	monitor.RegisterLogsRoute(router)

	// Background due-date reminders. REMINDER_INTERVAL_MINUTES=0 disables.
	intervalMinutes := 60
	if v := os.Getenv("REMINDER_INTERVAL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			intervalMinutes = parsed
		}
	}
	services.StartReminderLoop(context.Background(), controllers.ReminderService(),
		time.Duration(intervalMinutes)*time.Minute, 24*time.Hour)

	// Create upload directory if not exists
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create upload directory: %v", err)
	}

	// Serve stored attachments
	router.Static("/files", uploadPath)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
