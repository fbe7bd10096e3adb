package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimit caps write requests across the whole session. A zero RPS disables it.
type RateLimit struct {
	RPS   float64
	Burst int
}

func (rl RateLimit) middleware() echo.MiddlewareFunc {
	if rl.RPS <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := rl.Burst
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(rl.RPS), burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !lim.Allow() {
				return c.JSON(stdhttp.StatusTooManyRequests, map[string]any{"error": "too many requests"})
			}
			return next(c)
		}
	}
}
