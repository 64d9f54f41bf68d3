package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

func AdminOnly(c *fiber.Ctx) error {
	userRole, ok := c.Locals("user_role").(string)
	if !ok || userRole != "admin" {
		return utils.Error(c, "Admin access required", fiber.StatusForbidden)
	}
	return c.Next()
}

func OrganizerOrAdmin(c *fiber.Ctx) error {
	userRole, ok := c.Locals("user_role").(string)
	if !ok || (userRole != "admin" && userRole != "organizer") {
		return utils.Error(c, "Access denied", fiber.StatusForbidden)
	}
	return c.Next()
}

func StaffOrAbove(c *fiber.Ctx) error {
	userRole, ok := c.Locals("user_role").(string)
	if !ok {
		return utils.Error(c, "Access denied", fiber.StatusForbidden)
	}

	allowedRoles := map[string]bool{
		"admin":     true,
		"organizer": true,
		"staff":     true,
	}

	if !allowedRoles[userRole] {
		return utils.Error(c, "Access denied", fiber.StatusForbidden)
	}
	return c.Next()
}
