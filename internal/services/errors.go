package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

// Business-rule outcomes. These are expected results, returned as typed
// values so handlers can map them to status codes; none of them is fatal.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNotOpen      = errors.New("event is not open for registration")
	ErrEventFull         = errors.New("event is full")
	ErrNotEligible       = errors.New("volunteer is not eligible for this event")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrNotRegistered     = errors.New("participant is not registered for this event")
	ErrNotPublicEvent    = errors.New("event does not accept external registrations")
	ErrVolunteerNotFound = errors.New("volunteer not found")
)

// ErrStoreConflict surfaces after the event lock has exhausted its retries.
var ErrStoreConflict = repositories.ErrConflict

// ValidationError carries every failing field of an external registration
// so the caller can render all messages at once.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
