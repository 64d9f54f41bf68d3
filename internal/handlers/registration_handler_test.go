package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *repositories.Repository, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	repo := repositories.NewRepository(db)
	cfg := &config.Config{
		JWTSecret: "test-secret",
		QRDir:     t.TempDir(),
	}

	h := NewHandler(
		services.NewAuthService(repo, cfg),
		services.NewEventService(repo),
		services.NewVolunteerService(repo),
		services.NewRegistrationService(repo, cfg),
		services.NewAttendanceService(repo),
		services.NewAnalyticsService(repo),
		cfg,
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	h.RegisterRoutes(app.Group("/api/v1"))
	return app, repo, cfg
}

func seedApprovedVolunteer(t *testing.T, repo *repositories.Repository, name string) *models.Volunteer {
	t.Helper()

	volunteer := &models.Volunteer{
		ID:                   uuid.New(),
		Name:                 name,
		Email:                name + "@nss.test",
		Phone:                "9876543210",
		Department:           "CSE",
		Year:                 "2024",
		NSSApplicationStatus: models.ApplicationApproved,
	}
	require.NoError(t, repo.VolunteerRepo.CreateVolunteer(volunteer))
	return volunteer
}

func seedOpenEvent(t *testing.T, repo *repositories.Repository, regType models.RegistrationType, max int) *models.Event {
	t.Helper()

	start := time.Now().AddDate(0, 0, 7)
	event := &models.Event{
		ID:               uuid.New(),
		Title:            "Blood Donation Camp",
		Location:         "Main Campus",
		StartDate:        start,
		EndDate:          start,
		Status:           models.EventUpcoming,
		RegistrationType: regType,
		MaxParticipants:  max,
	}
	require.NoError(t, repo.EventRepo.CreateEvent(event))
	return event
}

func signToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": uuid.NewString(),
		"email":   "staff@nss.test",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) utils.Response {
	t.Helper()

	var out utils.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	app, repo, _ := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationInternal, 1)
	first := seedApprovedVolunteer(t, repo, "asha")
	second := seedApprovedVolunteer(t, repo, "bala")

	target := fmt.Sprintf("/api/v1/events/%s/register", event.ID)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, target, RegisterRequest{VolunteerID: first.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// same volunteer again
	resp, err = app.Test(jsonRequest(t, http.MethodPost, target, RegisterRequest{VolunteerID: first.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// capacity of one is exhausted
	resp, err = app.Test(jsonRequest(t, http.MethodPost, target, RegisterRequest{VolunteerID: second.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, decodeResponse(t, resp).Error, "full")
}

func TestRegisterEndpointIgnoresToken(t *testing.T) {
	app, repo, cfg := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationInternal, 5)
	volunteer := seedApprovedVolunteer(t, repo, "asha")

	// registration is public; a caller that happens to carry an operator
	// token must get the same result as an anonymous one
	req := jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/register", event.ID),
		RegisterRequest{VolunteerID: volunteer.ID.String()})
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "admin"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	stored, err := repo.EventRepo.GetEventByID(event.ID.String())
	require.NoError(t, err)
	assert.Len(t, stored.Registrations, 1)
}

func TestRegisterEndpointUnknownEvent(t *testing.T) {
	app, repo, _ := newTestApp(t)
	volunteer := seedApprovedVolunteer(t, repo, "asha")

	target := fmt.Sprintf("/api/v1/events/%s/register", uuid.NewString())
	resp, err := app.Test(jsonRequest(t, http.MethodPost, target, RegisterRequest{VolunteerID: volunteer.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/events/not-a-uuid/register", RegisterRequest{VolunteerID: volunteer.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterExternalEndpointValidation(t *testing.T) {
	app, repo, _ := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationPublic, 5)

	target := fmt.Sprintf("/api/v1/events/%s/register-external", event.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodPost, target, RegisterExternalRequest{
		Name:  "Jane",
		Email: "not-an-email",
		Phone: "12345",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeResponse(t, resp)
	fields, ok := body.Fields.(map[string]interface{})
	require.True(t, ok, "expected per-field errors, got %v", body.Fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "age")
}

func TestRegisterExternalEndpoint(t *testing.T) {
	app, repo, _ := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationPublic, 5)

	target := fmt.Sprintf("/api/v1/events/%s/register-external", event.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodPost, target, RegisterExternalRequest{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "9876543210",
		Age:        21,
		BloodGroup: "O+",
		Role:       "Staff",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// internal events refuse external sign-ups
	internal := seedOpenEvent(t, repo, models.RegistrationInternal, 5)
	resp, err = app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%s/register-external", internal.ID), RegisterExternalRequest{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "9876543210",
		Age:        21,
		BloodGroup: "O+",
		Role:       "Staff",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnregisterEndpoint(t *testing.T) {
	app, repo, _ := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationInternal, 5)
	volunteer := seedApprovedVolunteer(t, repo, "asha")

	register := fmt.Sprintf("/api/v1/events/%s/register", event.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodPost, register, RegisterRequest{VolunteerID: volunteer.ID.String()}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	unregister := fmt.Sprintf("/api/v1/events/%s/register?volunteer_id=%s", event.ID, volunteer.ID)
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, unregister, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// already gone
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, unregister, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a participant reference is mandatory
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/events/%s/register", event.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAttendanceEndpointAuth(t *testing.T) {
	app, repo, cfg := newTestApp(t)
	event := seedOpenEvent(t, repo, models.RegistrationInternal, 5)
	volunteer := seedApprovedVolunteer(t, repo, "asha")

	register := fmt.Sprintf("/api/v1/events/%s/register", event.ID)
	resp, err := app.Test(jsonRequest(t, http.MethodPost, register, RegisterRequest{VolunteerID: volunteer.ID.String()}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	attended := true
	target := fmt.Sprintf("/api/v1/events/%s/attendance", event.ID)
	body := SetAttendanceRequest{VolunteerID: volunteer.ID.String(), Attended: &attended}

	// no token
	resp, err = app.Test(jsonRequest(t, http.MethodPut, target, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := jsonRequest(t, http.MethodPut, target, body)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "staff"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := repo.EventRepo.GetEventByID(event.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Registrations, 1)
	assert.True(t, stored.Registrations[0].Attended)
}

func TestListEventsDateFilterParams(t *testing.T) {
	app, repo, _ := newTestApp(t)
	seedOpenEvent(t, repo, models.RegistrationInternal, 5) // starts a week out

	// a window far in the past matches nothing
	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/events?starts_after=2000-01-01T00:00:00Z&ends_before=2000-12-31T00:00:00Z", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeResponse(t, resp)
	assert.Empty(t, body.Data)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/events?starts_after=yesterday", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServiceErrorStatusMapping(t *testing.T) {
	var svcErr error
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/result", func(c *fiber.Ctx) error {
		return respondServiceError(c, svcErr)
	})

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"store conflict", services.ErrStoreConflict, http.StatusConflict},
		{"event full", services.ErrEventFull, http.StatusConflict},
		{"not found", services.ErrEventNotFound, http.StatusNotFound},
		{"not eligible", services.ErrNotEligible, http.StatusForbidden},
		{"invalid view mode", services.ErrInvalidViewMode, http.StatusBadRequest},
		{"infrastructure", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svcErr = tc.err
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/result", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	app, _, cfg := newTestApp(t)

	// staff token, default year view
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "staff"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analytics?view=weekly", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "staff"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
