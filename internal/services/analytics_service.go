package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
)

// ViewMode selects the bucketing axis for attendance reports.
type ViewMode string

const (
	ViewYear  ViewMode = "year"
	ViewMonth ViewMode = "month"
)

var ErrInvalidViewMode = errors.New("view mode must be year or month")

// EventCompleted is the single completion policy for analytics: an event
// counts as completed when its effective end date lies strictly before
// now. The operator-set status column deliberately plays no part here.
func EventCompleted(event *models.Event, now time.Time) bool {
	return event.EffectiveEnd().Before(now)
}

type AnalyticsFilter struct {
	RegistrationType *models.RegistrationType
}

// VolunteerStats is one volunteer's tally within a bucket.
type VolunteerStats struct {
	VolunteerID string  `json:"volunteer_id"`
	Name        string  `json:"name"`
	Department  string  `json:"department"`
	Year        string  `json:"year"`
	TotalEvents int     `json:"total_events"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	// AttendancePct is present/total_events as a percentage, one decimal;
	// 0 when the volunteer has no events in the bucket.
	AttendancePct float64 `json:"attendance_pct"`
}

type AnalyticsBucket struct {
	Key        string           `json:"key"`
	EventCount int              `json:"event_count"`
	Volunteers []VolunteerStats `json:"volunteers"`
}

type AnalyticsSummary struct {
	TotalEvents     int     `json:"total_events"`
	TotalVolunteers int     `json:"total_volunteers"`
	TotalRecords    int     `json:"total_records"`
	PresentCount    int     `json:"present_count"`
	AttendanceRate  float64 `json:"attendance_rate"`
}

type AnalyticsReport struct {
	ViewMode ViewMode          `json:"view_mode"`
	Buckets  []AnalyticsBucket `json:"buckets"`
	Summary  AnalyticsSummary  `json:"summary"`
}

type AnalyticsService struct {
	repo *repositories.Repository
	now  func() time.Time
}

func NewAnalyticsService(repo *repositories.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// Report aggregates attendance over completed events for the approved
// volunteer roster. Year view buckets by each volunteer's cohort year
// (their current roster value); month view buckets by the calendar month
// of each event's start date. External registrations are skipped: the
// report covers internal volunteers only. Output ordering is
// deterministic for a fixed data set.
func (s *AnalyticsService) Report(mode ViewMode, filter AnalyticsFilter) (*AnalyticsReport, error) {
	if mode != ViewYear && mode != ViewMonth {
		return nil, ErrInvalidViewMode
	}

	events, err := s.repo.EventRepo.ListCompletedEvents(s.now())
	if err != nil {
		return nil, err
	}
	if filter.RegistrationType != nil {
		filtered := events[:0]
		for _, event := range events {
			if event.RegistrationType == *filter.RegistrationType {
				filtered = append(filtered, event)
			}
		}
		events = filtered
	}

	roster, err := s.repo.VolunteerRepo.ListApprovedVolunteers()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Volunteer, len(roster))
	for i := range roster {
		byID[roster[i].ID.String()] = &roster[i]
	}

	buckets := make(map[string]*AnalyticsBucket)
	stats := make(map[string]map[string]*VolunteerStats) // bucket key -> volunteer id -> stats

	bucket := func(key string) *AnalyticsBucket {
		b, ok := buckets[key]
		if !ok {
			b = &AnalyticsBucket{Key: key}
			buckets[key] = b
			stats[key] = make(map[string]*VolunteerStats)
		}
		return b
	}

	if mode == ViewYear {
		// Every completed event could have been attended by any cohort, so
		// each cohort-year bucket counts the full event set.
		for _, v := range roster {
			bucket(v.Year).EventCount = len(events)
		}
	}

	summary := AnalyticsSummary{TotalEvents: len(events)}
	seenVolunteers := make(map[string]bool)

	for i := range events {
		event := &events[i]
		if mode == ViewMonth {
			bucket(event.StartDate.Month().String()).EventCount++
		}

		for _, reg := range event.Registrations {
			if reg.ParticipantType != models.ParticipantVolunteer || reg.VolunteerID == nil {
				continue
			}
			volunteer, ok := byID[reg.VolunteerID.String()]
			if !ok {
				// Not on the approved roster (left, rejected since, or a
				// stale reference): skip rather than guess.
				continue
			}

			key := volunteer.Year
			if mode == ViewMonth {
				key = event.StartDate.Month().String()
			}
			b := bucket(key)

			vs, ok := stats[b.Key][volunteer.ID.String()]
			if !ok {
				vs = &VolunteerStats{
					VolunteerID: volunteer.ID.String(),
					Name:        volunteer.Name,
					Department:  volunteer.Department,
					Year:        volunteer.Year,
				}
				stats[b.Key][volunteer.ID.String()] = vs
			}

			vs.TotalEvents++
			if reg.Attended {
				vs.Present++
				summary.PresentCount++
			} else {
				vs.Absent++
			}

			summary.TotalRecords++
			seenVolunteers[volunteer.ID.String()] = true
		}
	}

	summary.TotalVolunteers = len(seenVolunteers)
	if summary.TotalRecords > 0 {
		summary.AttendanceRate = roundPct(summary.PresentCount, summary.TotalRecords)
	}

	report := &AnalyticsReport{
		ViewMode: mode,
		Summary:  summary,
		Buckets:  make([]AnalyticsBucket, 0, len(buckets)),
	}

	for key, b := range buckets {
		volunteers := make([]VolunteerStats, 0, len(stats[key]))
		for _, vs := range stats[key] {
			if vs.TotalEvents > 0 {
				vs.AttendancePct = roundPct(vs.Present, vs.TotalEvents)
			}
			volunteers = append(volunteers, *vs)
		}
		sort.Slice(volunteers, func(i, j int) bool {
			if volunteers[i].Name != volunteers[j].Name {
				return volunteers[i].Name < volunteers[j].Name
			}
			return volunteers[i].VolunteerID < volunteers[j].VolunteerID
		})
		b.Volunteers = volunteers
		report.Buckets = append(report.Buckets, *b)
	}

	if mode == ViewMonth {
		sort.Slice(report.Buckets, func(i, j int) bool {
			return monthIndex(report.Buckets[i].Key) < monthIndex(report.Buckets[j].Key)
		})
	} else {
		sort.Slice(report.Buckets, func(i, j int) bool {
			return report.Buckets[i].Key < report.Buckets[j].Key
		})
	}

	return report, nil
}

func roundPct(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func monthIndex(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 13
}
