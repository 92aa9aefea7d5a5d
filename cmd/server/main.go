package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/technofest-ar/platform-api/internal/api"
	"github.com/technofest-ar/platform-api/internal/database"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/middleware"
	"github.com/technofest-ar/platform-api/pkg/config"
)

func main() {
	log := logger.NewSimpleLogger()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	// Attachment storage
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatal("Failed to create upload directory", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		log.Fatal("Failed to set trusted proxies", err)
	}

	// Add security middleware
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg))

	// Add rate limiting in production
	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware())
	}

	// Add recovery middleware
	r.Use(gin.Recovery())

	// Setup API routes
	api.SetupRoutes(r, db.DB, cfg, log)

	// Start server
	log.Info("Server starting on port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server", err)
	}
}
