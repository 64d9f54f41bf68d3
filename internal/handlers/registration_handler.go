package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gitbyjay25/nss-portal-backend/internal/middleware"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type RegisterRequest struct {
	VolunteerID string `json:"volunteer_id" validate:"required,uuid"`
	Role        string `json:"role"`
}

type RegisterExternalRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Age        int    `json:"age"`
	BloodGroup string `json:"blood_group"`
	Role       string `json:"role"`
	Course     string `json:"course"`
	Year       string `json:"year"`
	University string `json:"university"`
}

// Register signs an NSS volunteer up for an event
// @Summary Register volunteer
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /events/{id}/register [post]
func (h *Handler) Register(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	var req RegisterRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.registrationSvc.Register(eventID, req.VolunteerID, req.Role)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, result, "Registered successfully", fiber.StatusCreated)
}

// RegisterExternal signs an external participant up for a public event
// @Summary Register external participant
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body RegisterExternalRequest true "Contact data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /events/{id}/register-external [post]
func (h *Handler) RegisterExternal(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	// Field validation happens in the service so every failing field is
	// reported together; only the body shape is parsed here.
	var req RegisterExternalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
	}

	result, err := h.registrationSvc.RegisterExternal(eventID, services.ExternalContactInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Age:        req.Age,
		BloodGroup: req.BloodGroup,
		Role:       req.Role,
		Course:     req.Course,
		Year:       req.Year,
		University: req.University,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, result, "Registered successfully", fiber.StatusCreated)
}

// Unregister removes a participant's registration
// @Summary Unregister participant
// @Tags Registrations
// @Produce json
// @Param id path string true "Event ID"
// @Param volunteer_id query string false "Volunteer ID (internal participants)"
// @Param email query string false "Email (external participants)"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/register [delete]
func (h *Handler) Unregister(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	ref, err := participantRefFromQuery(c)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	event, err := h.registrationSvc.Unregister(eventID, ref)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, event, "Unregistered successfully")
}

func participantRefFromQuery(c *fiber.Ctx) (services.ParticipantRef, error) {
	if volunteerID := c.Query("volunteer_id"); volunteerID != "" {
		id, err := uuid.Parse(volunteerID)
		if err != nil {
			return services.ParticipantRef{}, fiber.NewError(fiber.StatusBadRequest, "Invalid volunteer ID")
		}
		return services.NewVolunteerRef(id), nil
	}
	if email := c.Query("email"); email != "" {
		return services.NewEmailRef(email), nil
	}
	return services.ParticipantRef{}, fiber.NewError(fiber.StatusBadRequest, "volunteer_id or email is required")
}
