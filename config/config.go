// Package config provides helpers for reading typed values from the environment
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set or blank
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// GetEnvInt retrieves an integer environment variable.
// The fallback is returned together with the parse error when the value is malformed.
func GetEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback, err
	}
	return n, nil
}

// GetEnvBool retrieves a boolean environment variable
func GetEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback, err
	}
	return b, nil
}

// GetEnvDuration retrieves a duration environment variable such as "90s" or "1h"
func GetEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback, err
	}
	return d, nil
}
