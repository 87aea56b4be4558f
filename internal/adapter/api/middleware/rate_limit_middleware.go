package middleware

import (
	"github.com/labstack/echo/v4"

	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
	"baddelli/pkg/response"
)

// Limiter is satisfied by ratelimit.RateLimiter.
type Limiter interface {
	Allow(key, action string) bool
}

// RateLimit throttles a route per authenticated user, falling back to the
// client IP for anonymous requests.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, _ := c.Get("uid").(string)
			if key == "" {
				key = c.RealIP()
			}

			if !limiter.Allow(key, action) {
				logger.Warn("RATE LIMIT: %s blocked on %s", key, action)
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}

			return next(c)
		}
	}
}
