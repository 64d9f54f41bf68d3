package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gitbyjay25/nss-portal-backend/internal/middleware"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin organizer staff"`
}

// Login authenticates an operator
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	result, err := h.authSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		return utils.Error(c, "Invalid credentials", fiber.StatusUnauthorized)
	}

	return utils.Success(c, result, "Login successful")
}

// CreateUser creates an operator account
// @Summary Create user
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Router /admin/users [post]
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	user, err := h.authSvc.CreateUser(req.Email, req.Password, req.Role)
	if err != nil {
		return utils.Error(c, err.Error(), fiber.StatusBadRequest)
	}

	return utils.Success(c, user, "User created successfully", fiber.StatusCreated)
}

// GetProfile returns the authenticated operator's profile
// @Summary Get profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response
// @Failure 401 {object} utils.Response
// @Router /profile [get]
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		return utils.Error(c, "Unauthorized", fiber.StatusUnauthorized)
	}

	user, err := h.authSvc.GetUserProfile(userID)
	if err != nil {
		return utils.Error(c, "User not found", fiber.StatusNotFound)
	}

	return utils.Success(c, user, "Profile retrieved successfully")
}
