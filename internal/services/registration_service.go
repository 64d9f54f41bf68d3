package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

var contactValidate = validator.New()

// ParticipantRef identifies a registration on an event: internal
// participants by volunteer id, external ones by normalized email.
type ParticipantRef struct {
	VolunteerID *uuid.UUID
	Email       string
}

// NewVolunteerRef builds a ref for an internal participant.
func NewVolunteerRef(id uuid.UUID) ParticipantRef {
	return ParticipantRef{VolunteerID: &id}
}

// NewEmailRef builds a ref for an external participant.
func NewEmailRef(email string) ParticipantRef {
	return ParticipantRef{Email: NormalizeEmail(email)}
}

// NormalizeEmail is the canonical form used for external duplicate checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegistrationService struct {
	repo *repositories.Repository
	cfg  *config.Config
	now  func() time.Time
}

func NewRegistrationService(repo *repositories.Repository, cfg *config.Config) *RegistrationService {
	return &RegistrationService{repo: repo, cfg: cfg, now: time.Now}
}

type RegistrationResult struct {
	Event        *models.Event        `json:"event"`
	Registration *models.Registration `json:"registration"`
}

// Register signs an NSS volunteer up for an event. All preconditions run
// inside the event lock, in order: event open, capacity, eligibility,
// duplicate. A rejected registration leaves the event untouched.
func (s *RegistrationService) Register(eventID string, volunteerID string, role string) (*RegistrationResult, error) {
	volunteer, err := s.repo.VolunteerRepo.GetVolunteerByID(volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}

	if role == "" {
		role = "Participant"
	}

	var registration *models.Registration
	event, err := s.repo.EventRepo.WithEventLock(eventID, func(tx *gorm.DB, event *models.Event) error {
		if !event.OpenForRegistration() {
			return ErrEventNotOpen
		}
		if len(event.Registrations) >= event.MaxParticipants {
			return ErrEventFull
		}
		if event.RegistrationType == models.RegistrationInternal && !volunteer.Approved() {
			return ErrNotEligible
		}
		if findByVolunteer(event.Registrations, volunteer.ID) >= 0 {
			return ErrAlreadyRegistered
		}

		reg := models.Registration{
			ID:               uuid.New(),
			EventID:          event.ID,
			ParticipantType:  models.ParticipantVolunteer,
			VolunteerID:      &volunteer.ID,
			Role:             role,
			RegistrationDate: s.now(),
		}
		if err := tx.Create(&reg).Error; err != nil {
			return fmt.Errorf("failed to create registration: %w", err)
		}

		event.Registrations = append(event.Registrations, reg)
		registration = &event.Registrations[len(event.Registrations)-1]
		return nil
	})
	if err != nil {
		return nil, mapEventLockErr(err)
	}

	return &RegistrationResult{Event: event, Registration: registration}, nil
}

// ExternalContactInput is the submitted contact data for a participant
// without a roster record. Students additionally need course, year and a
// university identifier.
type ExternalContactInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,len=10,numeric"`
	Age        int    `json:"age" validate:"required,gte=16,lte=100"`
	BloodGroup string `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Role       string `json:"role" validate:"required"`
	Course     string `json:"course" validate:"required_if=Role Student"`
	Year       string `json:"year" validate:"required_if=Role Student"`
	University string `json:"university" validate:"required_if=Role Student"`
}

// RegisterExternal signs an external participant up for a public event.
// Contact fields are validated up front and every failing field is
// reported, not just the first. Successful registrants get a QR entry
// ticket generated alongside the record.
func (s *RegistrationService) RegisterExternal(eventID string, contact ExternalContactInput) (*RegistrationResult, error) {
	if verr := validateContact(contact); verr != nil {
		return nil, verr
	}

	email := NormalizeEmail(contact.Email)

	// The ticket file is written before the lock so no file I/O happens
	// inside the transaction; a rejected registration removes it again.
	regID := uuid.New()
	filename, err := utils.GenerateQRCodeImage(regID.String(), s.cfg.QRDir)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry ticket: %w", err)
	}

	var registration *models.Registration
	event, err := s.repo.EventRepo.WithEventLock(eventID, func(tx *gorm.DB, event *models.Event) error {
		if event.RegistrationType != models.RegistrationPublic {
			return ErrNotPublicEvent
		}
		if !event.OpenForRegistration() {
			return ErrEventNotOpen
		}
		if len(event.Registrations) >= event.MaxParticipants {
			return ErrEventFull
		}
		if findByEmail(event.Registrations, email) >= 0 {
			return ErrAlreadyRegistered
		}

		reg := models.Registration{
			ID:              regID,
			EventID:         event.ID,
			ParticipantType: models.ParticipantExternal,
			Contact: models.ExternalContact{
				Name:       strings.TrimSpace(contact.Name),
				Email:      email,
				Phone:      contact.Phone,
				Age:        contact.Age,
				BloodGroup: contact.BloodGroup,
				Course:     contact.Course,
				Year:       contact.Year,
				University: contact.University,
			},
			Role:             contact.Role,
			RegistrationDate: s.now(),
			TicketQRPath:     "/qrcodes/" + filename,
		}

		if err := tx.Create(&reg).Error; err != nil {
			return fmt.Errorf("failed to create registration: %w", err)
		}

		event.Registrations = append(event.Registrations, reg)
		registration = &event.Registrations[len(event.Registrations)-1]
		return nil
	})
	if err != nil {
		os.Remove(filepath.Join(s.cfg.QRDir, filename))
		return nil, mapEventLockErr(err)
	}

	return &RegistrationResult{Event: event, Registration: registration}, nil
}

// Unregister removes a participant's registration entirely, including any
// recorded attendance. Allowed regardless of event status.
func (s *RegistrationService) Unregister(eventID string, ref ParticipantRef) (*models.Event, error) {
	event, err := s.repo.EventRepo.WithEventLock(eventID, func(tx *gorm.DB, event *models.Event) error {
		idx := findByRef(event.Registrations, ref)
		if idx < 0 {
			return ErrNotRegistered
		}

		if err := tx.Delete(&models.Registration{}, "id = ?", event.Registrations[idx].ID).Error; err != nil {
			return fmt.Errorf("failed to delete registration: %w", err)
		}

		event.Registrations = append(event.Registrations[:idx], event.Registrations[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, mapEventLockErr(err)
	}

	return event, nil
}

func validateContact(contact ExternalContactInput) *ValidationError {
	err := contactValidate.Struct(contact)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"contact": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[contactFieldName(fe.Field())] = contactFieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func contactFieldName(structField string) string {
	switch structField {
	case "BloodGroup":
		return "blood_group"
	default:
		return strings.ToLower(structField)
	}
}

func contactFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for students"
	case "email":
		return "must be a valid email address"
	case "len", "numeric":
		return "must be exactly 10 digits"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func findByVolunteer(regs []models.Registration, volunteerID uuid.UUID) int {
	for i, reg := range regs {
		if reg.ParticipantType == models.ParticipantVolunteer &&
			reg.VolunteerID != nil && *reg.VolunteerID == volunteerID {
			return i
		}
	}
	return -1
}

func findByEmail(regs []models.Registration, email string) int {
	for i, reg := range regs {
		if reg.ParticipantType == models.ParticipantExternal &&
			NormalizeEmail(reg.Contact.Email) == email {
			return i
		}
	}
	return -1
}

func findByRef(regs []models.Registration, ref ParticipantRef) int {
	if ref.VolunteerID != nil {
		return findByVolunteer(regs, *ref.VolunteerID)
	}
	if ref.Email != "" {
		return findByEmail(regs, ref.Email)
	}
	return -1
}

func mapEventLockErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	return err
}
