package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type SetAttendanceRequest struct {
	VolunteerID string `json:"volunteer_id"`
	Email       string `json:"email"`
	Attended    *bool  `json:"attended" validate:"required"`
}

// SetAttendance marks or unmarks a participant's presence
// @Summary Set attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body SetAttendanceRequest true "Attendance data"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/attendance [put]
func (h *Handler) SetAttendance(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	var req SetAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
	}
	if req.Attended == nil {
		return utils.Error(c, "attended is required", fiber.StatusBadRequest)
	}

	var ref services.ParticipantRef
	switch {
	case req.VolunteerID != "":
		id, err := uuid.Parse(req.VolunteerID)
		if err != nil {
			return utils.Error(c, "Invalid volunteer ID", fiber.StatusBadRequest)
		}
		ref = services.NewVolunteerRef(id)
	case req.Email != "":
		ref = services.NewEmailRef(req.Email)
	default:
		return utils.Error(c, "volunteer_id or email is required", fiber.StatusBadRequest)
	}

	event, err := h.attendanceSvc.SetAttendance(eventID, ref, *req.Attended)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, event, "Attendance updated successfully")
}
