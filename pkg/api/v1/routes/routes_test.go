package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
)

func TestGetRoute(t *testing.T) {
	tests := map[string]string{
		StartJob:       "/start_job",
		StartJobDirect: "/start_job_direct",
		GetStatus:      "/status",
		Availability:   "/availability",
		InputSchema:    "/input_schema",
		Root:           "/",
		HealthCheck:    "/health",
		HealthDetailed: "/health/detailed",
		Metrics:        "/metrics",
		ListJobs:       "/jobs",
		ListPayments:   "/payments",
		DeleteJob:      "/jobs/:job_id",
	}
	for name, path := range tests {
		assert.Equal(t, path, GetRoute(name), name)
	}
	assert.Empty(t, GetRoute("Unknown"))
}

func TestURLHelpers(t *testing.T) {
	assert.Equal(t, "/start_job", StartJobURL())
	assert.Equal(t, "/start_job_direct", StartJobDirectURL())
	assert.Equal(t, "/status?job_id=abc", GetStatusURL("abc"))
	assert.Equal(t, "/availability", AvailabilityURL())
	assert.Equal(t, "/input_schema", InputSchemaURL())
	assert.Equal(t, "/health", HealthCheckURL())
	assert.Equal(t, "/health/detailed", HealthDetailedURL())
	assert.Equal(t, "/jobs?page=2&status=failed", ListJobsURL(url.Values{"page": {"2"}, "status": {"failed"}}))
	assert.Equal(t, "/payments", ListPaymentsURL(nil))
	assert.Equal(t, "/jobs/a%2Fb", DeleteJobURL("a/b"))
	assert.Empty(t, BuildURL("Unknown", nil, nil))
}

func TestRegisterRoutes_Options(t *testing.T) {
	limited := 0
	limiter := func(c *fiber.Ctx) error {
		limited++
		return c.Status(fiber.StatusTooManyRequests).SendString("slow down")
	}

	app := fiber.New()
	RegisterRoutes(app, &handlers.JobHandler{}, handlers.NewAgentHandler(nil, handlers.AgentInfo{}, PublicEndpoints()), Options{
		RateLimit: limiter,
	})

	// Job creation goes through the limiter
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/start_job", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/start_job_direct", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 2, limited)

	// Static endpoints do not
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, limited)

	// Debug and metrics routes are absent unless requested
	for _, path := range []string{"/jobs", "/payments", "/metrics"} {
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestPublicEndpoints(t *testing.T) {
	for _, path := range PublicEndpoints() {
		assert.NotEmpty(t, path)
		assert.Equal(t, byte('/'), path[0])
	}
	assert.Contains(t, PublicEndpoints(), "/start_job")
}
