package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the operator-facing lifecycle label. Analytics does not
// read it; completion there is derived from the event dates.
type EventStatus string

const (
	EventUpcoming  EventStatus = "Upcoming"
	EventOngoing   EventStatus = "Ongoing"
	EventCompleted EventStatus = "Completed"
	EventCancelled EventStatus = "Cancelled"
	EventPostponed EventStatus = "Postponed"
)

// Valid returns true when the status is a supported value.
func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventCompleted, EventCancelled, EventPostponed:
		return true
	default:
		return false
	}
}

// RegistrationType governs who may register. Fixed at event creation.
type RegistrationType string

const (
	RegistrationInternal RegistrationType = "internal"
	RegistrationPublic   RegistrationType = "public"
)

func (t RegistrationType) Valid() bool {
	return t == RegistrationInternal || t == RegistrationPublic
}

// ParticipantType discriminates a registration's participant reference:
// exactly one of VolunteerID (nss_volunteer) or Contact (external) is set.
type ParticipantType string

const (
	ParticipantVolunteer ParticipantType = "nss_volunteer"
	ParticipantExternal  ParticipantType = "external"
)

// ApplicationStatus tracks a volunteer's NSS onboarding.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"` // admin|organizer|staff
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Volunteer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone      string    `json:"phone"`
	Department string    `json:"department"`
	// Year is the cohort year used for year-wise analytics buckets,
	// distinct from the calendar year of any event.
	Year                 string            `json:"year"`
	NSSApplicationStatus ApplicationStatus `gorm:"column:nss_application_status;type:varchar(20);default:'pending'" json:"nss_application_status"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Approved reports whether the volunteer may register for internal events.
func (v *Volunteer) Approved() bool {
	return v.NSSApplicationStatus == ApplicationApproved
}

type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`

	Status           EventStatus      `gorm:"type:varchar(20);default:'Upcoming'" json:"status"`
	RegistrationType RegistrationType `gorm:"type:varchar(20);not null" json:"registration_type"`
	MaxParticipants  int              `gorm:"not null" json:"max_participants"`

	// CurrentParticipants caches len(Registrations); reconciled inside the
	// same transaction as every registration list mutation, never updated
	// on its own.
	CurrentParticipants int `gorm:"default:0" json:"current_participants"`

	Registrations []Registration `gorm:"foreignKey:EventID" json:"registrations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveEnd returns the end of the event, falling back to the start
// date when no explicit end date was given.
func (e *Event) EffectiveEnd() time.Time {
	if e.EndDate.IsZero() {
		return e.StartDate
	}
	return e.EndDate
}

// OpenForRegistration reports whether new registrations are accepted.
// Cancelled and Completed events are closed; Postponed events keep their
// registrations open.
func (e *Event) OpenForRegistration() bool {
	return e.Status != EventCancelled && e.Status != EventCompleted
}

// ExternalContact is the embedded contact record for participants without
// a volunteer roster entry.
type ExternalContact struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Age        int    `json:"age"`
	BloodGroup string `json:"blood_group"`
	Course     string `json:"course,omitempty"`
	Year       string `json:"year,omitempty"`
	University string `json:"university,omitempty"`
}

type Registration struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`

	ParticipantType ParticipantType `gorm:"type:varchar(20);not null" json:"participant_type"`
	VolunteerID     *uuid.UUID      `gorm:"type:uuid;index" json:"volunteer_id,omitempty"`
	Contact         ExternalContact `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`

	Role             string     `gorm:"default:'Participant'" json:"role"`
	RegistrationDate time.Time  `gorm:"not null" json:"registration_date"`
	Attended         bool       `gorm:"default:false" json:"attended"`
	AttendanceDate   *time.Time `json:"attendance_date,omitempty"`
	TicketQRPath     string     `json:"ticket_qr_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Volunteer *Volunteer `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
}
