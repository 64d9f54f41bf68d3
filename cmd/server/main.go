package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/handlers"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/pkg/database"
	"github.com/gitbyjay25/nss-portal-backend/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warnf(".env file not found: %v", err)
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		logrus.Fatalf("Config error: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		logrus.Fatalf("Migration error: %v", err)
	}

	// Initialize repositories
	repo := repositories.NewRepository(db)

	// Initialize services
	authSvc := services.NewAuthService(repo, cfg)
	eventSvc := services.NewEventService(repo)
	volunteerSvc := services.NewVolunteerService(repo)
	registrationSvc := services.NewRegistrationService(repo, cfg)
	attendanceSvc := services.NewAttendanceService(repo)
	analyticsSvc := services.NewAnalyticsService(repo)

	// Initialize handlers
	handler := handlers.NewHandler(
		authSvc,
		eventSvc,
		volunteerSvc,
		registrationSvc,
		attendanceSvc,
		analyticsSvc,
		cfg,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "NSS Portal API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// QR tickets for external registrants
	if err := os.MkdirAll(cfg.QRDir, 0755); err != nil {
		logrus.Fatalf("Failed to create QR directory: %v", err)
	}
	app.Static("/qrcodes", cfg.QRDir)

	// Register routes
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logrus.Infof("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			logrus.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logrus.Fatalf("Server shutdown error: %v", err)
	}
	logrus.Info("Server stopped gracefully")
}
