package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
)

// ErrConflict is returned when a locked update keeps losing to concurrent
// transactions after all retries.
var ErrConflict = errors.New("store conflict")

// lockRetries bounds how often a serialization failure is retried before
// ErrConflict is surfaced.
const lockRetries = 3

type EventFilters struct {
	Status           *models.EventStatus
	RegistrationType *models.RegistrationType
	StartsAfter      *time.Time
	EndsBefore       *time.Time
	Search           string
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) CreateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.Create(event).Error
}

// GetEventByID retrieves an event with its registrations in registration order.
func (r *eventRepo) GetEventByID(id string) (*models.Event, error) {
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var event models.Event
	if err := r.db.
		Preload("Registrations", func(db *gorm.DB) *gorm.DB {
			return db.Order("registrations.registration_date ASC, registrations.created_at ASC")
		}).
		Preload("Registrations.Volunteer").
		Where("id = ?", id).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// ListEvents retrieves a paginated list of events with optional filters.
func (r *eventRepo) ListEvents(offset, limit int, filters *EventFilters) ([]models.Event, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var events []models.Event
	var total int64

	query := r.db.Model(&models.Event{})

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.RegistrationType != nil {
			query = query.Where("registration_type = ?", *filters.RegistrationType)
		}
		if filters.StartsAfter != nil {
			query = query.Where("start_date >= ?", *filters.StartsAfter)
		}
		if filters.EndsBefore != nil {
			query = query.Where("end_date <= ?", *filters.EndsBefore)
		}
		if filters.Search != "" {
			searchTerm := "%" + filters.Search + "%"
			query = query.Where("title LIKE ? OR description LIKE ?", searchTerm, searchTerm)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	if err := query.
		Offset(offset).
		Limit(limit).
		Order("start_date DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// ListCompletedEvents returns every event whose effective end date lies
// strictly before now, with registrations preloaded. Completion here is
// date-derived on purpose; the status column is an operator label only.
func (r *eventRepo) ListCompletedEvents(now time.Time) ([]models.Event, error) {
	var candidates []models.Event
	if err := r.db.
		Preload("Registrations").
		Where("start_date < ?", now).
		Order("start_date ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed events: %w", err)
	}

	// start_date narrows the fetch; the effective-end policy (end date
	// defaulting to start date) is applied here so it lives in one place.
	events := make([]models.Event, 0, len(candidates))
	for _, event := range candidates {
		if event.EffectiveEnd().Before(now) {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *eventRepo) UpdateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.Save(event).Error
}

func (r *eventRepo) UpdateEventStatus(id string, status models.EventStatus) error {
	if id == "" {
		return errors.New("event ID cannot be empty")
	}

	result := r.db.Model(&models.Event{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update event status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, gorm.ErrRecordNotFound)
	}

	return nil
}

// WithEventLock executes fn against the event and its registrations inside
// a transaction holding a FOR UPDATE lock on the event row. fn may mutate
// registration rows through tx and must keep event.Registrations in step;
// the cached participant counter is reconciled from the list and persisted
// before commit. Serialization failures re-run fn against fresh state up
// to lockRetries times, after which ErrConflict is returned.
func (r *eventRepo) WithEventLock(id string, fn func(tx *gorm.DB, event *models.Event) error) (*models.Event, error) {
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var lastErr error
	for attempt := 0; attempt < lockRetries; attempt++ {
		event, err := r.runLocked(id, fn)
		if err == nil {
			return event, nil
		}
		if !isSerializationFailure(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func (r *eventRepo) runLocked(id string, fn func(tx *gorm.DB, event *models.Event) error) (*models.Event, error) {
	var event models.Event

	err := r.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "postgres" {
			// Row lock serializes mutations per event. SQLite has no FOR
			// UPDATE; its single writer gives the same guarantee.
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("event %s: %w", id, gorm.ErrRecordNotFound)
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		if err := tx.
			Where("event_id = ?", event.ID).
			Order("registration_date ASC, created_at ASC").
			Find(&event.Registrations).Error; err != nil {
			return fmt.Errorf("failed to load registrations: %w", err)
		}

		if err := fn(tx, &event); err != nil {
			return err
		}

		// The counter is never trusted on its own: recompute from the list
		// inside the same transaction as the mutation.
		event.CurrentParticipants = len(event.Registrations)
		return tx.Model(&models.Event{}).
			Where("id = ?", event.ID).
			Update("current_participants", event.CurrentParticipants).Error
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
