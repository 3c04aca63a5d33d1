package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agrocredbr/agrocred-api/internal/api"
	"github.com/agrocredbr/agrocred-api/internal/database"
	"github.com/agrocredbr/agrocred-api/internal/logger"
	"github.com/agrocredbr/agrocred-api/internal/middleware"
	"github.com/agrocredbr/agrocred-api/internal/services"
	"github.com/agrocredbr/agrocred-api/pkg/config"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()
	appLogger := logger.New(cfg.Environment)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis for the score cache
	rdb, err := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", err)
	}
	defer rdb.Close()

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware stack
	r.Use(middleware.LoggingMiddleware(appLogger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware(cfg.MaxRequestSize))
	if cfg.EnableRateLimit {
		r.Use(middleware.RateLimitingMiddleware())
	}
	r.Use(gin.Recovery())

	if trusted := cfg.GetTrustedProxies(); len(trusted) > 0 {
		if err := r.SetTrustedProxies(trusted); err != nil {
			appLogger.Fatal("Invalid trusted proxy configuration", err)
		}
	}

	svcs := services.NewServices(db.DB, rdb.Client, cfg, appLogger)
	api.SetupRoutes(r, svcs, db, rdb, cfg)

	appLogger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLogger.Fatal("Failed to start server", err)
	}
}
