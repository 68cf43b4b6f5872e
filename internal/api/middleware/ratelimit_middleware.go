package middleware

import (
	"errors"
	"math"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type RateLimitMiddleware struct {
	limiter service.RateLimitService
}

func NewRateLimitMiddleware(limiter service.RateLimitService) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Guard applies the fixed-window limiter to one endpoint, keyed by the
// caller identity header (falling back to the client IP).
func (m *RateLimitMiddleware) Guard(endpoint string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := c.Get(IdentityHeader)
		if caller == "" {
			caller = c.IP()
		}

		if err := m.limiter.Allow(c.Context(), endpoint, caller); err != nil {
			var rl *apperr.RateLimitError
			if errors.As(err, &rl) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":       "rate limited",
					"retry_after": int(math.Ceil(rl.RetryAfter.Seconds())),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Next()
	}
}
