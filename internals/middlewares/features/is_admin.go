package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// IsAdmin gates the admin console routes on the role claim set by the auth
// middleware.
func IsAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok || role != "admin" {
			log.Printf("[WARN] admin access denied path=%s role=%q", c.Path(), role)
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
