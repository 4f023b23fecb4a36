package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pulse/internal/models"
)

// TokenParser validates a session token and returns the principal id.
type TokenParser interface {
	Parse(token string) (string, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// principal id in c.Locals("userID") for downstream handlers.
func AuthRequired(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Missing or malformed authorization header"))
		}

		userID, err := parser.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}
