package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
)

type Repository struct {
	DB            *gorm.DB
	EventRepo     EventRepository
	VolunteerRepo VolunteerRepository
	UserRepo      UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:            db,
		EventRepo:     NewEventRepository(db),
		VolunteerRepo: NewVolunteerRepository(db),
		UserRepo:      NewUserRepository(db),
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Volunteer{},
		&models.Event{},
		&models.Registration{},
	)
}

// Interface definitions
type UserRepository interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}

type VolunteerRepository interface {
	CreateVolunteer(volunteer *models.Volunteer) error
	GetVolunteerByID(id string) (*models.Volunteer, error)
	GetVolunteerByEmail(email string) (*models.Volunteer, error)
	ListVolunteers(offset, limit int, status *models.ApplicationStatus) ([]models.Volunteer, int64, error)
	ListApprovedVolunteers() ([]models.Volunteer, error)
	UpdateApplicationStatus(id string, status models.ApplicationStatus) error
}

type EventRepository interface {
	CreateEvent(event *models.Event) error
	GetEventByID(id string) (*models.Event, error)
	ListEvents(offset, limit int, filters *EventFilters) ([]models.Event, int64, error)
	ListCompletedEvents(now time.Time) ([]models.Event, error)
	UpdateEvent(event *models.Event) error
	UpdateEventStatus(id string, status models.EventStatus) error

	// WithEventLock runs fn against the event and its registrations under
	// a per-event row lock and persists the result atomically. See
	// event_repo.go for the retry contract.
	WithEventLock(id string, fn func(tx *gorm.DB, event *models.Event) error) (*models.Event, error)
}
