package test

import (
	"time"

	"github.com/celestiaorg/echo-agent/internal/config"
)

// DefaultTestTimeout is the default timeout for test suites.
const DefaultTestTimeout = 30 * time.Second

// testAPIKey is the token shared by the agent and the fake payment service
const testAPIKey = "test-api-key"

// Option represents a configuration option for the test suite.
type Option func(*Suite)

// WithConfig returns an option that adjusts the agent configuration before the server starts.
func WithConfig(fn func(cfg *config.Config)) Option {
	return func(s *Suite) {
		fn(s.Config)
	}
}

// WithoutPayment returns an option that leaves the payment settings unset,
// which disables the paid endpoint.
func WithoutPayment() Option {
	return func(s *Suite) {
		s.Config.Payment.ServiceURL = ""
		s.Config.Payment.APIKey = ""
	}
}

// WithCleanupFunc returns an option that adds a cleanup function to be
// called when the suite is cleaned up.
func WithCleanupFunc(cleanup func()) Option {
	return func(s *Suite) {
		oldCleanup := s.cleanup
		s.cleanup = func() {
			if cleanup != nil {
				cleanup()
			}
			if oldCleanup != nil {
				oldCleanup()
			}
		}
	}
}
