package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

func newTestRepo(t *testing.T) *repositories.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	return repositories.NewRepository(db)
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret: "test-secret",
		QRDir:     t.TempDir(),
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func seedVolunteer(t *testing.T, repo *repositories.Repository, name, year string, status models.ApplicationStatus) *models.Volunteer {
	t.Helper()

	volunteer := &models.Volunteer{
		ID:                   uuid.New(),
		Name:                 name,
		Email:                NormalizeEmail(name + "@nss.test"),
		Phone:                "9876543210",
		Department:           "CSE",
		Year:                 year,
		NSSApplicationStatus: status,
	}
	require.NoError(t, repo.VolunteerRepo.CreateVolunteer(volunteer))
	return volunteer
}

func seedEvent(t *testing.T, repo *repositories.Repository, regType models.RegistrationType, max int, start time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:               uuid.New(),
		Title:            "Blood Donation Camp",
		Location:         "Main Campus",
		StartDate:        start,
		EndDate:          start,
		StartTime:        "09:00",
		EndTime:          "17:00",
		Status:           models.EventUpcoming,
		RegistrationType: regType,
		MaxParticipants:  max,
	}
	require.NoError(t, repo.EventRepo.CreateEvent(event))
	return event
}

func validContact() ExternalContactInput {
	return ExternalContactInput{
		Name:       "Jane",
		Email:      "jane@x.com",
		Phone:      "9876543210",
		Age:        20,
		BloodGroup: "O+",
		Role:       "Staff",
	}
}
