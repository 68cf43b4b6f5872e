package middleware

import (
	"strings"

	config "github.com/craftsites/autopost/configs"
	"github.com/gofiber/fiber/v2"
)

const IdentityHeader = "X-Trigger-Identity"

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// TriggerGuard admits a request only when both the bearer credential and the
// caller-identity header match the configured values. Rejected requests get
// a 401 before any side effect.
func (m *AuthMiddleware) TriggerGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		identity := c.Get(IdentityHeader)

		if m.cfg.TriggerToken == "" || token != m.cfg.TriggerToken || identity != m.cfg.TriggerIdentity {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		return c.Next()
	}
}
