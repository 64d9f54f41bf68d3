package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gitbyjay25/nss-portal-backend/internal/models"
	"github.com/gitbyjay25/nss-portal-backend/internal/services"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

// GetAnalytics returns year-wise or month-wise attendance aggregates
// @Summary Attendance analytics
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param view query string false "View mode: year or month" default(year)
// @Param registration_type query string false "Event type filter"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /analytics [get]
func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	mode := services.ViewMode(c.Query("view", string(services.ViewYear)))

	filter := services.AnalyticsFilter{}
	if t := c.Query("registration_type"); t != "" {
		regType := models.RegistrationType(t)
		if !regType.Valid() {
			return utils.Error(c, "Invalid registration_type filter", fiber.StatusBadRequest)
		}
		filter.RegistrationType = &regType
	}

	report, err := h.analyticsSvc.Report(mode, filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	return utils.Success(c, report, "Analytics computed successfully")
}
