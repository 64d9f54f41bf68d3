package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

type analyticsFixture struct {
	repo   *repositories.Repository
	svc    *AnalyticsService
	regSvc *RegistrationService
	attSvc *AttendanceService

	asha *models.Volunteer
	bala *models.Volunteer

	janEvent *models.Event
	febEvent *models.Event
}

// Two completed events: January (internal) and February (public). Asha
// attends January and misses February; Bala attends January. The February
// event also carries an external registrant and a pending (off-roster)
// volunteer, both of which analytics must skip. A future event is present
// with a Completed status label to prove completion is date-derived.
func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()

	repo := newTestRepo(t)

	f := &analyticsFixture{
		repo:   repo,
		svc:    NewAnalyticsService(repo),
		regSvc: NewRegistrationService(repo, newTestConfig(t)),
		attSvc: NewAttendanceService(repo),
	}
	f.svc.now = fixedClock(testNow)
	f.regSvc.now = fixedClock(testNow.AddDate(0, -3, 0))
	f.attSvc.now = fixedClock(testNow.AddDate(0, -1, 0))

	f.asha = seedVolunteer(t, repo, "Asha", "2024", models.ApplicationApproved)
	f.bala = seedVolunteer(t, repo, "Bala", "2025", models.ApplicationApproved)
	devi := seedVolunteer(t, repo, "Devi", "2024", models.ApplicationPending)

	f.janEvent = seedEvent(t, repo, models.RegistrationInternal, 10,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	f.febEvent = seedEvent(t, repo, models.RegistrationPublic, 10,
		time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))

	// future event labelled Completed: excluded regardless of the label
	future := seedEvent(t, repo, models.RegistrationInternal, 10, testNow.AddDate(0, 1, 0))
	require.NoError(t, repo.EventRepo.UpdateEventStatus(future.ID.String(), models.EventCompleted))

	register := func(event *models.Event, vol *models.Volunteer) {
		_, err := f.regSvc.Register(event.ID.String(), vol.ID.String(), "")
		require.NoError(t, err)
	}
	register(f.janEvent, f.asha)
	register(f.janEvent, f.bala)
	register(f.febEvent, f.asha)
	register(f.febEvent, devi)
	_, err := f.regSvc.RegisterExternal(f.febEvent.ID.String(), validContact())
	require.NoError(t, err)

	attend := func(event *models.Event, vol *models.Volunteer) {
		_, err := f.attSvc.SetAttendance(event.ID.String(), NewVolunteerRef(vol.ID), true)
		require.NoError(t, err)
	}
	attend(f.janEvent, f.asha)
	attend(f.janEvent, f.bala)

	return f
}

func findBucket(t *testing.T, report *AnalyticsReport, key string) AnalyticsBucket {
	t.Helper()
	for _, b := range report.Buckets {
		if b.Key == key {
			return b
		}
	}
	t.Fatalf("bucket %q not found", key)
	return AnalyticsBucket{}
}

func TestAnalyticsYearView(t *testing.T) {
	f := newAnalyticsFixture(t)

	report, err := f.svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)

	// each cohort bucket counts the full completed-event set
	y2024 := findBucket(t, report, "2024")
	y2025 := findBucket(t, report, "2025")
	assert.Equal(t, 2, y2024.EventCount)
	assert.Equal(t, 2, y2025.EventCount)

	require.Len(t, y2024.Volunteers, 1)
	asha := y2024.Volunteers[0]
	assert.Equal(t, "Asha", asha.Name)
	assert.Equal(t, 2, asha.TotalEvents)
	assert.Equal(t, 1, asha.Present)
	assert.Equal(t, 1, asha.Absent)
	assert.Equal(t, 50.0, asha.AttendancePct)

	require.Len(t, y2025.Volunteers, 1)
	bala := y2025.Volunteers[0]
	assert.Equal(t, 1, bala.TotalEvents)
	assert.Equal(t, 100.0, bala.AttendancePct)

	assert.Equal(t, 2, report.Summary.TotalEvents)
	assert.Equal(t, 2, report.Summary.TotalVolunteers)
	assert.Equal(t, 3, report.Summary.TotalRecords)
	assert.Equal(t, 2, report.Summary.PresentCount)
	assert.Equal(t, 66.7, report.Summary.AttendanceRate)
}

func TestAnalyticsMonthView(t *testing.T) {
	f := newAnalyticsFixture(t)

	report, err := f.svc.Report(ViewMonth, AnalyticsFilter{})
	require.NoError(t, err)

	require.Len(t, report.Buckets, 2)
	// calendar order, not lexicographic
	assert.Equal(t, "January", report.Buckets[0].Key)
	assert.Equal(t, "February", report.Buckets[1].Key)

	jan := report.Buckets[0]
	assert.Equal(t, 1, jan.EventCount)
	require.Len(t, jan.Volunteers, 2)
	assert.Equal(t, "Asha", jan.Volunteers[0].Name)
	assert.Equal(t, "Bala", jan.Volunteers[1].Name)
	assert.Equal(t, 100.0, jan.Volunteers[0].AttendancePct)

	feb := report.Buckets[1]
	assert.Equal(t, 1, feb.EventCount)
	require.Len(t, feb.Volunteers, 1)
	assert.Equal(t, "Asha", feb.Volunteers[0].Name)
	assert.Equal(t, 0.0, feb.Volunteers[0].AttendancePct)
}

func TestAnalyticsEventTypeFilter(t *testing.T) {
	f := newAnalyticsFixture(t)

	internal := models.RegistrationInternal
	report, err := f.svc.Report(ViewYear, AnalyticsFilter{RegistrationType: &internal})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.TotalEvents)
	assert.Equal(t, 2, report.Summary.TotalRecords)
	y2024 := findBucket(t, report, "2024")
	assert.Equal(t, 1, y2024.EventCount)
	require.Len(t, y2024.Volunteers, 1)
	assert.Equal(t, 100.0, y2024.Volunteers[0].AttendancePct)
}

func TestAnalyticsDeterminism(t *testing.T) {
	f := newAnalyticsFixture(t)

	first, err := f.svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)
	second, err := f.svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyticsAfterUnregister(t *testing.T) {
	f := newAnalyticsFixture(t)

	// removing a registration also removes its historical attendance
	_, err := f.regSvc.Unregister(f.janEvent.ID.String(), NewVolunteerRef(f.asha.ID))
	require.NoError(t, err)

	report, err := f.svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)

	y2024 := findBucket(t, report, "2024")
	require.Len(t, y2024.Volunteers, 1)
	asha := y2024.Volunteers[0]
	assert.Equal(t, 1, asha.TotalEvents)
	assert.Equal(t, 0, asha.Present)
	assert.Equal(t, 0.0, asha.AttendancePct)

	assert.Equal(t, 2, report.Summary.TotalRecords)
	assert.Equal(t, 50.0, report.Summary.AttendanceRate)
}

func TestAnalyticsEmptyAndInvalid(t *testing.T) {
	repo := newTestRepo(t)
	svc := NewAnalyticsService(repo)
	svc.now = fixedClock(testNow)

	seedVolunteer(t, repo, "Asha", "2024", models.ApplicationApproved)

	_, err := svc.Report(ViewMode("week"), AnalyticsFilter{})
	assert.ErrorIs(t, err, ErrInvalidViewMode)

	report, err := svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.TotalEvents)
	assert.Equal(t, 0.0, report.Summary.AttendanceRate)

	// cohort buckets exist even with nothing to count
	y2024 := findBucket(t, report, "2024")
	assert.Equal(t, 0, y2024.EventCount)
	assert.Empty(t, y2024.Volunteers)

	// an event without registrations counts as an event, nothing more
	seedEvent(t, repo, models.RegistrationInternal, 5, testNow.AddDate(0, 0, -7))
	report, err = svc.Report(ViewYear, AnalyticsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalEvents)
	assert.Equal(t, 0, report.Summary.TotalRecords)
	assert.Equal(t, 0.0, report.Summary.AttendanceRate)
	assert.Equal(t, 1, findBucket(t, report, "2024").EventCount)
}
