package middleware

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/internal/metrics"
)

// Metrics returns a middleware recording request counts and latencies.
// Requests are labelled by route pattern to keep label cardinality bounded.
func Metrics(skipPaths ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		done := metrics.RequestStarted()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		done(c.Method(), c.Route().Path, status)
		return err
	}
}
