package test

import (
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/celestiaorg/echo-agent/internal/app"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/client"
)

// testClientTimeout is the timeout for test API client requests
const testClientTimeout = 5 * time.Second

// SetupServer starts the agent described by the suite configuration behind a test server
func SetupServer(s *Suite) {
	agent, err := app.New(s.Config, "test")
	s.Require().NoError(err, "Failed to create agent")
	s.Agent = agent
	s.Agent.Start(s.ctx)

	// Create test server using adaptor to convert Fiber app to http.Handler
	server := httptest.NewServer(adaptor.FiberApp(s.Agent.Fiber))

	// Create API client with test configuration
	apiClient, err := client.NewClient(&client.Options{
		BaseURL: server.URL,
		Timeout: testClientTimeout,
	})
	s.Require().NoError(err, "Failed to create API client")
	s.APIClient = apiClient

	// Update cleanup to close server and stop the agent
	originalCleanup := s.cleanup
	s.cleanup = func() {
		server.Close()
		if err := s.Agent.Stop(); err != nil {
			s.t.Logf("failed to stop agent: %v", err)
		}
		if originalCleanup != nil {
			originalCleanup()
		}
	}
}
