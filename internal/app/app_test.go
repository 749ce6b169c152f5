package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/echo-agent/internal/config"
	"github.com/celestiaorg/echo-agent/internal/db/repos"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:      "0",
		AgentMode: "reverse",
		Payment: config.PaymentConfig{
			Network: config.NetworkPreprod,
			Amount:  config.DefaultPaymentAmount,
			Unit:    config.DefaultPaymentUnit,
			Timeout: time.Hour,
		},
		Database:             config.DatabaseConfig{Driver: config.StoreDriverMemory},
		ExpirySweepInterval:  time.Minute,
		RateLimitRPS:         1,
		RateLimitBurst:       2,
		EnableDebugEndpoints: true,
	}
}

func validPayment() config.PaymentConfig {
	return config.PaymentConfig{
		ServiceURL:      "http://127.0.0.1:1/api/v1",
		APIKey:          "key",
		AgentIdentifier: "agent-1",
		SellerVKey:      "vkey",
		Network:         config.NetworkPreprod,
		Amount:          config.DefaultPaymentAmount,
		Unit:            config.DefaultPaymentUnit,
		Timeout:         time.Hour,
	}
}

func request(t *testing.T, a *App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestNew_WithoutPaymentConfig(t *testing.T) {
	a, err := New(testConfig(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	status, body := request(t, a, http.MethodPost, "/start_job", `{"requester_id":"buyer","input_data":{"text":"hi"}}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "Server configuration error")

	status, body = request(t, a, http.MethodPost, "/start_job_direct", `{"requester_id":"buyer","input_data":{"text":"Hello World"}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Reversed: dlroW olleH", body["result"])

	status, body = request(t, a, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["payment_configured"])
	assert.Equal(t, "reverse", body["mode"])
}

func TestNew_WithPaymentConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Payment = validPayment()

	a, err := New(cfg, "test")
	require.NoError(t, err)

	status, body := request(t, a, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["payment_configured"])
	assert.Equal(t, "agent-1", body["agent_identifier"])
}

func TestNew_RoutesAndMiddleware(t *testing.T) {
	a, err := New(testConfig(), "test")
	require.NoError(t, err)

	status, body := request(t, a, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not-found", body["slug"])

	status, _ = request(t, a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = request(t, a, http.MethodGet, "/jobs", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "jobs")

	// Burst of two, then the limiter answers
	direct := `{"requester_id":"buyer","input_data":{"text":"a"}}`
	for i := 0; i < 2; i++ {
		status, _ = request(t, a, http.MethodPost, "/start_job_direct", direct)
		assert.Equal(t, http.StatusOK, status)
	}
	status, body = request(t, a, http.MethodPost, "/start_job_direct", direct)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate-limited", body["slug"])
}

func TestNew_DebugRoutesDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableDebugEndpoints = false

	a, err := New(cfg, "test")
	require.NoError(t, err)

	status, _ := request(t, a, http.MethodGet, "/jobs", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNew_InvalidMode(t *testing.T) {
	cfg := testConfig()
	cfg.AgentMode = "shout"
	_, err := New(cfg, "test")
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	store, closer, err := newStore(config.DatabaseConfig{Driver: config.StoreDriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &repos.MemoryJobRepository{}, store)
	assert.Nil(t, closer)

	store, closer, err = newStore(config.DatabaseConfig{
		Driver:     config.StoreDriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "jobs.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &repos.JobRepository{}, store)
	require.NotNil(t, closer)
	assert.NoError(t, closer())

	_, _, err = newStore(config.DatabaseConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestNewGateway(t *testing.T) {
	gateway, err := newGateway(validPayment())
	require.NoError(t, err)
	assert.NotNil(t, gateway)

	invalid := validPayment()
	invalid.AgentIdentifier = "REPLACE"
	gateway, err = newGateway(invalid)
	assert.Error(t, err)
	assert.Nil(t, gateway)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(testConfig(), "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
