package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/middleware"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type Handler struct {
	authSvc         *services.AuthService
	eventSvc        *services.EventService
	volunteerSvc    *services.VolunteerService
	registrationSvc *services.RegistrationService
	attendanceSvc   *services.AttendanceService
	analyticsSvc    *services.AnalyticsService
	cfg             *config.Config
}

func NewHandler(
	authSvc *services.AuthService,
	eventSvc *services.EventService,
	volunteerSvc *services.VolunteerService,
	registrationSvc *services.RegistrationService,
	attendanceSvc *services.AttendanceService,
	analyticsSvc *services.AnalyticsService,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authSvc:         authSvc,
		eventSvc:        eventSvc,
		volunteerSvc:    volunteerSvc,
		registrationSvc: registrationSvc,
		attendanceSvc:   attendanceSvc,
		analyticsSvc:    analyticsSvc,
		cfg:             cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	auth := router.Group("/auth")
	{
		auth.Post("/login", h.Login)
	}

	events := router.Group("/events")
	{
		events.Get("/", h.ListEvents)
		events.Get("/:id", h.GetEvent)

		// Registration and unregistration are open: eligibility is a
		// business rule, not an authentication concern.
		events.Post("/:id/register", h.Register)
		events.Post("/:id/register-external", h.RegisterExternal)
		events.Delete("/:id/register", h.Unregister)
	}

	router.Post("/volunteers/apply", h.ApplyVolunteer)

	// Protected routes (JWT required)
	protected := router.Group("", middleware.JWTMiddleware(h.cfg))
	{
		protected.Get("/profile", h.GetProfile)

		eventsAdmin := protected.Group("/events")
		eventsAdmin.Use(middleware.OrganizerOrAdmin)
		{
			eventsAdmin.Post("/", h.CreateEvent)
			eventsAdmin.Patch("/:id/status", h.UpdateEventStatus)
		}

		staff := protected.Group("", middleware.StaffOrAbove)
		{
			staff.Put("/events/:id/attendance", h.SetAttendance)
			staff.Get("/analytics", h.GetAnalytics)
			staff.Get("/volunteers", h.ListVolunteers)
			staff.Get("/volunteers/:id", h.GetVolunteer)
		}

		admin := protected.Group("/admin", middleware.AdminOnly)
		{
			admin.Post("/users", h.CreateUser)
			admin.Patch("/volunteers/:id/status", h.SetVolunteerStatus)
		}
	}
}

// ErrorHandler handles errors that escape the handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
	}

	return utils.Error(c, message, code)
}

// respondServiceError maps the business-rule error taxonomy onto HTTP
// status codes. Anything unrecognized is an infrastructure failure and
// surfaces as an opaque unavailability.
func respondServiceError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return utils.ValidationFailed(c, verr.Fields)
	}

	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrVolunteerNotFound),
		errors.Is(err, services.ErrNotRegistered):
		return utils.Error(c, err.Error(), fiber.StatusNotFound)

	case errors.Is(err, services.ErrNotEligible):
		return utils.Error(c, err.Error(), fiber.StatusForbidden)

	case errors.Is(err, services.ErrEventFull),
		errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrEventNotOpen),
		errors.Is(err, services.ErrNotPublicEvent),
		errors.Is(err, services.ErrStoreConflict):
		return utils.Error(c, err.Error(), fiber.StatusConflict)

	case errors.Is(err, services.ErrInvalidViewMode):
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)

	default:
		logrus.WithError(err).WithField("path", c.Path()).Error("service error")
		return utils.Error(c, "Service temporarily unavailable", fiber.StatusServiceUnavailable)
	}
}
