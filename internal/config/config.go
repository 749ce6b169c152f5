// Package config loads the process-wide agent settings from the environment
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"

	env "github.com/celestiaorg/echo-agent/config"
	"github.com/celestiaorg/echo-agent/internal/constants"
)

// Default values applied when an environment variable is not set
const (
	DefaultPort                = "8000"
	DefaultNetwork             = "Preprod"
	DefaultPaymentAmount       = "10000000"
	DefaultPaymentUnit         = "lovelace"
	DefaultAgentMode           = "reverse"
	DefaultPaymentTimeout      = time.Hour
	DefaultExpirySweepInterval = time.Minute
	DefaultGatewayTimeout      = 30 * time.Second
	DefaultGatewayRetries      = 3
	DefaultStoreDriver         = StoreDriverMemory
	DefaultSQLitePath          = "echo-agent.db"
	DefaultRateLimitRPS        = 10
	DefaultRateLimitBurst      = 20
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
)

// Supported job store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Supported networks
const (
	NetworkPreprod = "Preprod"
	NetworkMainnet = "Mainnet"
)

// PaymentConfig holds the settings needed to talk to the payment service
type PaymentConfig struct {
	ServiceURL      string
	APIKey          string
	AgentIdentifier string
	SellerVKey      string
	Network         string
	Amount          string
	Unit            string
	Timeout         time.Duration
	GatewayTimeout  time.Duration
	GatewayRetries  int
}

// DatabaseConfig holds the settings of the SQL-backed job store
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
}

// Config is the read-only settings object shared by the whole process
type Config struct {
	Port                 string
	AgentMode            string
	Payment              PaymentConfig
	Database             DatabaseConfig
	ExpirySweepInterval  time.Duration
	RateLimitRPS         int
	RateLimitBurst       int
	EnableDebugEndpoints bool
	LogLevel             string
	LogFormat            string
}

// Load reads the .env file when present and builds the configuration from the environment.
// Malformed numeric or duration values are reported; missing payment settings are left to Validate.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment is authoritative
	_ = godotenv.Load()

	var errs []error
	collect := func(key string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	cfg := &Config{
		Port:      env.GetEnv(constants.EnvPort, DefaultPort),
		AgentMode: strings.ToLower(env.GetEnv(constants.EnvAgentMode, DefaultAgentMode)),
		Payment: PaymentConfig{
			ServiceURL:      strings.TrimRight(env.GetEnv(constants.EnvPaymentServiceURL, ""), "/"),
			APIKey:          env.GetEnv(constants.EnvPaymentAPIKey, ""),
			AgentIdentifier: env.GetEnv(constants.EnvAgentIdentifier, ""),
			SellerVKey:      env.GetEnv(constants.EnvSellerVKey, ""),
			Network:         env.GetEnv(constants.EnvNetwork, DefaultNetwork),
			Amount:          env.GetEnv(constants.EnvPaymentAmount, DefaultPaymentAmount),
			Unit:            env.GetEnv(constants.EnvPaymentUnit, DefaultPaymentUnit),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(env.GetEnv(constants.EnvStoreDriver, DefaultStoreDriver)),
			SQLitePath: env.GetEnv(constants.EnvSQLitePath, DefaultSQLitePath),
			Host:       env.GetEnv(constants.EnvDBHost, ""),
			User:       env.GetEnv(constants.EnvDBUser, ""),
			Password:   env.GetEnv(constants.EnvDBPassword, ""),
			Name:       env.GetEnv(constants.EnvDBName, ""),
			SSLMode:    env.GetEnv(constants.EnvDBSSLMode, "disable"),
		},
		LogLevel:  env.GetEnv(constants.EnvLogLevel, DefaultLogLevel),
		LogFormat: strings.ToLower(env.GetEnv(constants.EnvLogFormat, DefaultLogFormat)),
	}

	var err error
	cfg.Payment.Timeout, err = env.GetEnvDuration(constants.EnvPaymentTimeout, DefaultPaymentTimeout)
	collect(constants.EnvPaymentTimeout, err)
	cfg.Payment.GatewayTimeout, err = env.GetEnvDuration(constants.EnvGatewayTimeout, DefaultGatewayTimeout)
	collect(constants.EnvGatewayTimeout, err)
	cfg.Payment.GatewayRetries, err = env.GetEnvInt(constants.EnvGatewayRetries, DefaultGatewayRetries)
	collect(constants.EnvGatewayRetries, err)
	cfg.ExpirySweepInterval, err = env.GetEnvDuration(constants.EnvExpirySweepInterval, DefaultExpirySweepInterval)
	collect(constants.EnvExpirySweepInterval, err)
	cfg.Database.Port, err = env.GetEnvInt(constants.EnvDBPort, 0)
	collect(constants.EnvDBPort, err)
	cfg.RateLimitRPS, err = env.GetEnvInt(constants.EnvRateLimitRPS, DefaultRateLimitRPS)
	collect(constants.EnvRateLimitRPS, err)
	cfg.RateLimitBurst, err = env.GetEnvInt(constants.EnvRateLimitBurst, DefaultRateLimitBurst)
	collect(constants.EnvRateLimitBurst, err)
	cfg.EnableDebugEndpoints, err = env.GetEnvBool(constants.EnvEnableDebugEndpoints, false)
	collect(constants.EnvEnableDebugEndpoints, err)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
// The server may still start with payment settings missing; only the paid endpoint depends on them.
func (c *Config) Validate() error {
	return errors.Join(c.ValidateServer(), c.Payment.Validate())
}

// ValidateServer checks the settings the server cannot start without
func (c *Config) ValidateServer() error {
	var errs []error

	if c.AgentMode != "reverse" && c.AgentMode != "echo" {
		errs = append(errs, fmt.Errorf("%s must be 'reverse' or 'echo' (got: '%s')", constants.EnvAgentMode, c.AgentMode))
	}
	switch c.Database.Driver {
	case StoreDriverMemory, StoreDriverPostgres, StoreDriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("%s must be one of memory, postgres, sqlite (got: '%s')", constants.EnvStoreDriver, c.Database.Driver))
	}
	if c.Payment.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", constants.EnvPaymentTimeout))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("%s and %s must be positive", constants.EnvRateLimitRPS, constants.EnvRateLimitBurst))
	}
	return errors.Join(errs...)
}

// Validate checks the settings required by the paid job path
func (p PaymentConfig) Validate() error {
	var errs []error

	switch p.AgentIdentifier {
	case "":
		errs = append(errs, fmt.Errorf("%s is not set", constants.EnvAgentIdentifier))
	case constants.PlaceholderAgentIdentifier:
		errs = append(errs, fmt.Errorf("%s is set to placeholder '%s' - please set a real agent identifier",
			constants.EnvAgentIdentifier, constants.PlaceholderAgentIdentifier))
	}
	if err := ValidateURL(p.ServiceURL, constants.EnvPaymentServiceURL); err != nil {
		errs = append(errs, err)
	}
	if p.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is not set", constants.EnvPaymentAPIKey))
	}
	if p.SellerVKey == "" {
		errs = append(errs, fmt.Errorf("%s is not set", constants.EnvSellerVKey))
	}
	if p.Network != NetworkPreprod && p.Network != NetworkMainnet {
		errs = append(errs, fmt.Errorf("%s must be %s or %s (got: '%s')", constants.EnvNetwork, NetworkPreprod, NetworkMainnet, p.Network))
	}
	if p.Amount == "" || strings.TrimLeft(p.Amount, "0123456789") != "" {
		errs = append(errs, fmt.Errorf("%s must be a non-negative integer (got: '%s')", constants.EnvPaymentAmount, p.Amount))
	}
	if p.Unit == "" {
		errs = append(errs, fmt.Errorf("%s is not set", constants.EnvPaymentUnit))
	}
	return errors.Join(errs...)
}

// ValidateURL checks that a URL is set, uses http(s) and has a host
func ValidateURL(raw, name string) error {
	if raw == "" {
		return fmt.Errorf("%s is not set", name)
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("%s must start with 'https://' or 'http://' (got: '%s')", name, raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%s is not a valid URL format (got: '%s')", name, raw)
	}
	return nil
}
