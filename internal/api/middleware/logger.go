// Package middleware provides the fiber middleware shared by all agent routes
package middleware

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	log "github.com/celestiaorg/echo-agent/internal/logger"
)

// Logger returns a middleware that logs HTTP requests
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue chain
		err := c.Next()

		// After request
		stop := time.Now()
		latency := stop.Sub(start)

		fields := map[string]interface{}{
			"timestamp": stop.Format("2006/01/02 - 15:04:05"),
			"status":    c.Response().StatusCode(),
			"latency":   latency.String(),
			"ip":        c.IP(),
			"method":    c.Method(),
			"path":      c.Path(),
			"handler":   c.Route().Name,
		}
		if err != nil {
			fields["error"] = err.Error()
		}

		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			log.WarnWithFields("Request", fields)
		} else {
			log.InfoWithFields("Request", fields)
		}
		return err
	}
}
