package test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/echo-agent/internal/app"
	"github.com/celestiaorg/echo-agent/internal/config"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/client"
	"github.com/celestiaorg/echo-agent/test/mocks"
)

// Suite encapsulates all components needed for integration testing.
// It provides a complete test setup with:
//   - sqlite job store in a temporary directory
//   - Real API server with its background workers
//   - Real API client
//   - Fake payment service
type Suite struct {
	t *testing.T // The testing.T instance for this suite

	// Agent configuration, adjustable through options
	Config *config.Config

	// Server components
	Agent *app.App

	// Client components
	APIClient client.Client

	// External services
	Payments *mocks.PaymentService

	// Context management
	ctx        context.Context
	cancelFunc context.CancelFunc

	// Cleanup function
	cleanup     func()
	cleanupOnce sync.Once
}

// NewSuite creates a new test suite with the given options.
// The suite must be cleaned up after use by calling Cleanup.
func NewSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	// Create suite with default timeout
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTestTimeout)

	s := &Suite{
		t:          t,
		ctx:        ctx,
		cancelFunc: cancel,
		Payments:   mocks.NewPaymentService(testAPIKey),
	}
	s.Config = defaultConfig(t, s.Payments.URL())

	// Initialize cleanup function
	s.cleanup = func() {
		s.Payments.Close()
		if s.cancelFunc != nil {
			s.cancelFunc()
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	// Setup server by default
	SetupServer(s)

	return s
}

func defaultConfig(t *testing.T, paymentURL string) *config.Config {
	return &config.Config{
		Port:      "0",
		AgentMode: config.DefaultAgentMode,
		Payment: config.PaymentConfig{
			ServiceURL:      paymentURL,
			APIKey:          testAPIKey,
			AgentIdentifier: "test-agent",
			SellerVKey:      "test-vkey",
			Network:         config.NetworkPreprod,
			Amount:          config.DefaultPaymentAmount,
			Unit:            config.DefaultPaymentUnit,
			Timeout:         time.Hour,
			GatewayTimeout:  5 * time.Second,
			GatewayRetries:  1,
		},
		Database: config.DatabaseConfig{
			Driver:     config.StoreDriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "jobs.db"),
		},
		ExpirySweepInterval:  time.Minute,
		RateLimitRPS:         1000,
		RateLimitBurst:       1000,
		EnableDebugEndpoints: true,
	}
}

// Cleanup tears down the test suite, releasing all resources.
// This should be deferred immediately after creating the suite.
func (s *Suite) Cleanup() {
	s.cleanupOnce.Do(func() {
		if s.cleanup != nil {
			s.cleanup()
		}
	})
}

// T returns the testing.T instance for this suite
func (s *Suite) T() *testing.T {
	return s.t
}

// Context returns the suite's context, which is automatically
// canceled when the suite is cleaned up.
func (s *Suite) Context() context.Context {
	return s.ctx
}

// Require returns a require.Assertions instance for this suite.
// This is a convenience method to avoid passing t around.
func (s *Suite) Require() *require.Assertions {
	return require.New(s.t)
}

// Retry retries a function until it succeeds or the number of retries is reached.
func (s *Suite) Retry(fn func() error, retries int, interval time.Duration) (err error) {
	for i := 0; i < retries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return
}
