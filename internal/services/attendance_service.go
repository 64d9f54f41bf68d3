package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

type AttendanceService struct {
	repo *repositories.Repository
	now  func() time.Time
}

func NewAttendanceService(repo *repositories.Repository) *AttendanceService {
	return &AttendanceService{repo: repo, now: time.Now}
}

// SetAttendance marks or unmarks a participant's presence on an event.
// The operation is idempotent: writing the current value again changes
// nothing. AttendanceDate is stamped on the false→true transition and
// cleared on true→false so the field is only ever meaningful while
// attended is true.
func (s *AttendanceService) SetAttendance(eventID string, ref ParticipantRef, attended bool) (*models.Event, error) {
	event, err := s.repo.EventRepo.WithEventLock(eventID, func(tx *gorm.DB, event *models.Event) error {
		idx := findByRef(event.Registrations, ref)
		if idx < 0 {
			return ErrNotRegistered
		}

		reg := &event.Registrations[idx]
		if reg.Attended == attended {
			return nil
		}

		reg.Attended = attended
		if attended {
			markedAt := s.now()
			reg.AttendanceDate = &markedAt
		} else {
			reg.AttendanceDate = nil
		}

		if err := tx.Model(&models.Registration{}).
			Where("id = ?", reg.ID).
			Select("attended", "attendance_date").
			Updates(map[string]interface{}{
				"attended":        reg.Attended,
				"attendance_date": reg.AttendanceDate,
			}).Error; err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, mapEventLockErr(err)
	}

	return event, nil
}
