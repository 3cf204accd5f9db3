package middleware

import (
	"supplier-portal/internal/common/models"
	"supplier-portal/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through only for sessions of one of the given user types.
// It must run after Auth.Handler.
func RequireRole(types ...models.UserType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session.FromContext(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !sess.Is(types...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// RequireActiveAccount rejects vendor and dealer sessions that have not selected an account.
func RequireActiveAccount() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := session.FromContext(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if !sess.Type.Internal() && sess.ActiveAccountID == 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Select an account first",
			})
		}
		return c.Next()
	}
}
