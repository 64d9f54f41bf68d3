package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

type EventService struct {
	repo *repositories.Repository
}

func NewEventService(repo *repositories.Repository) *EventService {
	return &EventService{repo: repo}
}

type CreateEventRequest struct {
	Title            string
	Description      string
	Location         string
	StartDate        time.Time
	EndDate          time.Time
	StartTime        string
	EndTime          string
	RegistrationType models.RegistrationType
	MaxParticipants  int
}

func (s *EventService) CreateEvent(req CreateEventRequest) (*models.Event, error) {
	if req.MaxParticipants < 1 {
		return nil, errors.New("max participants must be at least 1")
	}
	if !req.RegistrationType.Valid() {
		return nil, errors.New("registration type must be internal or public")
	}
	if req.StartDate.IsZero() {
		return nil, errors.New("start date is required")
	}

	// End date/time default to the start when absent.
	if req.EndDate.IsZero() {
		req.EndDate = req.StartDate
	}
	if req.EndTime == "" {
		req.EndTime = req.StartTime
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, errors.New("end date must not be before start date")
	}

	event := &models.Event{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Status:           models.EventUpcoming,
		RegistrationType: req.RegistrationType,
		MaxParticipants:  req.MaxParticipants,
	}

	if err := s.repo.EventRepo.CreateEvent(event); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *EventService) GetEvent(id string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) ListEvents(page, pageSize int, filters *repositories.EventFilters) ([]models.Event, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	events, total, err := s.repo.EventRepo.ListEvents(offset, pageSize, filters)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return events, total, totalPages, nil
}

// UpdateStatus moves an event through its operator-controlled lifecycle.
// Registrations already present are unaffected; closed statuses only stop
// new ones being accepted.
func (s *EventService) UpdateStatus(id string, status models.EventStatus) error {
	if !status.Valid() {
		return errors.New("invalid event status")
	}

	if err := s.repo.EventRepo.UpdateEventStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}
