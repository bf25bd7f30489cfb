package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/surya16122114/roomies-radar/internal/auth"
)

// BearerAuth gates the chat routes behind a token from the account
// service. The resolved user ID lands in c.Locals("user_id").
func BearerAuth(v *auth.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(hdr, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    "Unauthorized",
				"message": "missing bearer token",
			})
		}
		sub, err := v.Validate(hdr[len(prefix):])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    "Unauthorized",
				"message": "invalid bearer token",
			})
		}
		c.Locals("user_id", sub)
		return c.Next()
	}
}
