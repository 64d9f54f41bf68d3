package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/gitbyjay25/nss-portal-backend/internal/config"
	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(cfg.JWTSecret),
		ContextKey:   "user",
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			user := c.Locals("user").(*jwt.Token)
			claims := user.Claims.(jwt.MapClaims)
			c.Locals("user_id", claims["user_id"])
			c.Locals("user_role", claims["role"])
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	return utils.Error(c, "Unauthorized", fiber.StatusUnauthorized)
}

func GetUserIDFromContext(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "User not authenticated")
	}
	return userID, nil
}
