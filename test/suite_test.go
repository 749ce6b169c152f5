package test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/echo-agent/internal/config"
)

func TestNewSuite(t *testing.T) {
	s := NewSuite(t)
	defer s.Cleanup()

	// Basic environment checks
	assert.Same(t, t, s.T())
	assert.NotNil(t, s.Agent, "agent should be initialized")
	assert.NotNil(t, s.APIClient, "API client should be initialized")
	assert.NotNil(t, s.Payments, "payment service should be initialized")
	assert.NotNil(t, s.Context(), "context should be set")
	assert.NotNil(t, s.cleanup, "cleanup function should be set")

	health, err := s.APIClient.HealthCheck(s.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestSuite_Options(t *testing.T) {
	t.Run("config override", func(t *testing.T) {
		s := NewSuite(t, WithConfig(func(cfg *config.Config) {
			cfg.AgentMode = "echo"
		}))
		defer s.Cleanup()

		assert.Equal(t, "echo", s.Config.AgentMode)
	})

	t.Run("cleanup func runs", func(t *testing.T) {
		called := false
		s := NewSuite(t, WithCleanupFunc(func() { called = true }))
		s.Cleanup()
		assert.True(t, called)
	})
}

func TestSuite_Cleanup(t *testing.T) {
	s := NewSuite(t)

	// First cleanup should work
	s.Cleanup()

	// Second cleanup should not panic
	s.Cleanup()

	assert.Error(t, s.Context().Err(), "context should be cancelled after cleanup")
}
