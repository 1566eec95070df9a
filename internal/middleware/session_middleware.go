package middleware

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/session"
	"storefront/pkg/logger"
)

// IdentityKey is the fiber local holding the authenticated user record.
const IdentityKey = "identity"

// AdminRequired is a Fiber middleware that only lets requests through while
// the admin session is authenticated.
func AdminRequired(sess *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !sess.Authenticated() {
			logger.Debug(c.UserContext()).Str("path", c.Path()).Msg("Admin route requested without a session")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Login required",
				"state":   sess.State().String(),
			})
		}

		c.Locals(IdentityKey, sess.Identity())
		if sess.Degraded() {
			c.Set("X-Session-Degraded", "true")
		}
		return c.Next()
	}
}
