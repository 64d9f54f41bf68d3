package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
	"github.com/gitbyjay25/nss-portal-backend/pkg/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	log.Println("Database migrations completed successfully")

	// Create default admin user if not exists
	if err := createDefaultAdmin(db); err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Println("Migration process completed")
}

func createDefaultAdmin(db *gorm.DB) error {
	adminEmail := "admin@nssportal.org"
	adminPassword := "admin123"

	var existingAdmin models.User
	if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Println("Default admin user already exists")
		return nil
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:       uuid.New(),
		Email:    adminEmail,
		Password: hashedPassword,
		Role:     "admin",
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin user created: %s (change the password)", adminEmail)

	return nil
}
