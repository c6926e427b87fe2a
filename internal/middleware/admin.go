package middleware

import (
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RestrictTo allows only principals holding one of roles. Mounted without
// Protect ahead of it, it fails closed with a 500.
func RestrictTo(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := p.Require(roles...); err != nil {
			return err
		}
		return c.Next()
	}
}
