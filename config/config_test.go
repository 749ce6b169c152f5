package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("ECHO_AGENT_TEST_STRING", "  value  ")
	assert.Equal(t, "value", GetEnv("ECHO_AGENT_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnv("ECHO_AGENT_TEST_MISSING", "fallback"))

	t.Setenv("ECHO_AGENT_TEST_STRING", "   ")
	assert.Equal(t, "fallback", GetEnv("ECHO_AGENT_TEST_STRING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("ECHO_AGENT_TEST_INT", "42")
	n, err := GetEnvInt("ECHO_AGENT_TEST_INT", 1)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	t.Setenv("ECHO_AGENT_TEST_INT", "forty-two")
	n, err = GetEnvInt("ECHO_AGENT_TEST_INT", 1)
	assert.Error(t, err)
	assert.Equal(t, 1, n)

	n, err = GetEnvInt("ECHO_AGENT_TEST_MISSING", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("ECHO_AGENT_TEST_BOOL", "true")
	b, err := GetEnvBool("ECHO_AGENT_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	t.Setenv("ECHO_AGENT_TEST_BOOL", "maybe")
	_, err = GetEnvBool("ECHO_AGENT_TEST_BOOL", false)
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("ECHO_AGENT_TEST_DURATION", "90s")
	d, err := GetEnvDuration("ECHO_AGENT_TEST_DURATION", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = GetEnvDuration("ECHO_AGENT_TEST_MISSING", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}
