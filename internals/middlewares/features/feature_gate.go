package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"athletiq_backend/internals/configs"
)

// RequireFeature hard-gates a route group on an ENV feature flag. Broadcast
// e-mail and contact sync stay fully disabled unless the flag is turned on.
func RequireFeature(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !configs.FeatureEnabled(flag) {
			log.Printf("[INFO] feature %s disabled, rejecting %s", flag, c.Path())
			return fiber.NewError(fiber.StatusForbidden, "This feature is not enabled")
		}
		return c.Next()
	}
}
