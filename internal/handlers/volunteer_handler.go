package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gitbyjay25/nss-portal-backend/internal/middleware"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type ApplyVolunteerRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Department string `json:"department" validate:"required"`
	Year       string `json:"year" validate:"required"`
}

type SetVolunteerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ApplyVolunteer submits an NSS volunteer application
// @Summary Apply as volunteer
// @Tags Volunteers
// @Accept json
// @Produce json
// @Param request body ApplyVolunteerRequest true "Application data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /volunteers/apply [post]
func (h *Handler) ApplyVolunteer(c *fiber.Ctx) error {
	var req ApplyVolunteerRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	volunteer, err := h.volunteerSvc.Apply(services.ApplyRequest{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		Year:       req.Year,
	})
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, volunteer, "Application submitted successfully", fiber.StatusCreated)
}

// ListVolunteers returns paginated volunteers, optionally by status
// @Summary List volunteers
// @Tags Volunteers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param status query string false "Application status filter"
// @Success 200 {object} utils.Response
// @Router /volunteers [get]
func (h *Handler) ListVolunteers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	var status *models.ApplicationStatus
	if s := c.Query("status"); s != "" {
		appStatus := models.ApplicationStatus(s)
		switch appStatus {
		case models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
			status = &appStatus
		default:
			return utils.Error(c, "Invalid status filter", fiber.StatusBadRequest)
		}
	}

	volunteers, total, totalPages, err := h.volunteerSvc.ListVolunteers(page, pageSize, status)
	if err != nil {
		return respondServiceError(c, err)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, volunteers, meta, "Volunteers retrieved successfully")
}

// GetVolunteer returns volunteer by ID
// @Summary Get volunteer
// @Tags Volunteers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Volunteer ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /volunteers/{id} [get]
func (h *Handler) GetVolunteer(c *fiber.Ctx) error {
	volunteerID := c.Params("id")
	if _, err := uuid.Parse(volunteerID); err != nil {
		return utils.Error(c, "Invalid volunteer ID", fiber.StatusBadRequest)
	}

	volunteer, err := h.volunteerSvc.GetVolunteer(volunteerID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, volunteer, "Volunteer retrieved successfully")
}

// SetVolunteerStatus approves or rejects an application
// @Summary Set volunteer application status
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Volunteer ID"
// @Param request body SetVolunteerStatusRequest true "New status"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/volunteers/{id}/status [patch]
func (h *Handler) SetVolunteerStatus(c *fiber.Ctx) error {
	volunteerID := c.Params("id")
	if _, err := uuid.Parse(volunteerID); err != nil {
		return utils.Error(c, "Invalid volunteer ID", fiber.StatusBadRequest)
	}

	var req SetVolunteerStatusRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	if err := h.volunteerSvc.SetApplicationStatus(volunteerID, models.ApplicationStatus(req.Status)); err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, nil, "Application status updated successfully")
}
