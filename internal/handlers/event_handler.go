package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gitbyjay25/nss-portal-backend/internal/middleware"
	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/repositories"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type CreateEventRequest struct {
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	StartDate        string `json:"start_date" validate:"required"`
	EndDate          string `json:"end_date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	RegistrationType string `json:"registration_type" validate:"required,oneof=internal public"`
	MaxParticipants  int    `json:"max_participants" validate:"required,gte=1"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Upcoming Ongoing Completed Cancelled Postponed"`
}

// CreateEvent creates a new event
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /events [post]
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return utils.Error(c, "Invalid start_date format", fiber.StatusBadRequest)
	}

	var endDate time.Time
	if req.EndDate != "" {
		endDate, err = time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return utils.Error(c, "Invalid end_date format", fiber.StatusBadRequest)
		}
	}

	event, err := h.eventSvc.CreateEvent(services.CreateEventRequest{
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location,
		StartDate:        startDate,
		EndDate:          endDate,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		RegistrationType: models.RegistrationType(req.RegistrationType),
		MaxParticipants:  req.MaxParticipants,
	})
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, event, "Event created successfully", fiber.StatusCreated)
}

// ListEvents returns paginated list of events
// @Summary List events
// @Tags Events
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param status query string false "Status filter"
// @Param registration_type query string false "Registration type filter"
// @Param starts_after query string false "Only events starting on or after (RFC3339)"
// @Param ends_before query string false "Only events ending on or before (RFC3339)"
// @Success 200 {object} utils.Response
// @Router /events [get]
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	filters := &repositories.EventFilters{Search: c.Query("search")}
	if s := c.Query("status"); s != "" {
		status := models.EventStatus(s)
		if !status.Valid() {
			return utils.Error(c, "Invalid status filter", fiber.StatusBadRequest)
		}
		filters.Status = &status
	}
	if t := c.Query("registration_type"); t != "" {
		regType := models.RegistrationType(t)
		if !regType.Valid() {
			return utils.Error(c, "Invalid registration_type filter", fiber.StatusBadRequest)
		}
		filters.RegistrationType = &regType
	}
	if v := c.Query("starts_after"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.Error(c, "Invalid starts_after format", fiber.StatusBadRequest)
		}
		filters.StartsAfter = &ts
	}
	if v := c.Query("ends_before"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.Error(c, "Invalid ends_before format", fiber.StatusBadRequest)
		}
		filters.EndsBefore = &ts
	}

	events, total, totalPages, err := h.eventSvc.ListEvents(page, pageSize, filters)
	if err != nil {
		return respondServiceError(c, err)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, events, meta, "Events retrieved successfully")
}

// GetEvent returns event by ID
// @Summary Get event by ID
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id} [get]
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	event, err := h.eventSvc.GetEvent(eventID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, event, "Event retrieved successfully")
}

// UpdateEventStatus moves an event through its lifecycle
// @Summary Update event status
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body UpdateEventStatusRequest true "New status"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /events/{id}/status [patch]
func (h *Handler) UpdateEventStatus(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	var req UpdateEventStatusRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	if err := h.eventSvc.UpdateStatus(eventID, models.EventStatus(req.Status)); err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, nil, "Event status updated successfully")
}
