package middleware

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/gitbyjay25/nss-portal-backend/internal/utils"
)

var validate = validator.New()

// ValidateBody parses the request body into dest and validates it,
// reporting every failing field rather than bailing on the first. It is
// called inline from handlers, so success returns nil instead of
// resuming route matching with Next.
func ValidateBody(dest interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.BodyParser(dest); err != nil {
			return utils.Error(c, "Invalid request body", fiber.StatusBadRequest)
		}

		if err := validate.Struct(dest); err != nil {
			validationErrors, ok := err.(validator.ValidationErrors)
			if !ok {
				return utils.Error(c, "Validation failed", fiber.StatusBadRequest)
			}

			fields := make(map[string]string, len(validationErrors))
			for _, fe := range validationErrors {
				fields[strings.ToLower(fe.Field())] = fieldMessage(fe)
			}

			return utils.ValidationFailed(c, fields)
		}

		c.Locals("validatedBody", dest)
		return nil
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
