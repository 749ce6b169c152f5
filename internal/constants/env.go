// Package constants provides centralized definitions of constants used throughout the application
package constants

// Environment variable names for the agent and its payment integration
const (
	// EnvPort is the port the agent API listens on
	EnvPort = "PORT"

	// EnvPaymentServiceURL is the base URL of the Masumi payment service (e.g. http://localhost:3001/api/v1)
	EnvPaymentServiceURL = "PAYMENT_SERVICE_URL"
	// EnvPaymentAPIKey is the admin or purchase token sent to the payment service
	EnvPaymentAPIKey = "PAYMENT_API_KEY"
	// EnvAgentIdentifier is the identifier the agent was registered with
	EnvAgentIdentifier = "AGENT_IDENTIFIER"
	// EnvSellerVKey is the seller wallet verification key
	EnvSellerVKey = "SELLER_VKEY"
	// EnvNetwork is the Cardano network name (Preprod or Mainnet)
	EnvNetwork = "NETWORK"
	// EnvPaymentAmount is the fixed price of a job
	EnvPaymentAmount = "PAYMENT_AMOUNT"
	// EnvPaymentUnit is the currency unit of PaymentAmount
	EnvPaymentUnit = "PAYMENT_UNIT"
	// EnvPaymentTimeout is how long a job may stay awaiting payment
	EnvPaymentTimeout = "PAYMENT_TIMEOUT"
	// EnvExpirySweepInterval is how often stale jobs are expired in the background
	EnvExpirySweepInterval = "EXPIRY_SWEEP_INTERVAL"
	// EnvGatewayTimeout bounds a single outbound call to the payment service
	EnvGatewayTimeout = "GATEWAY_TIMEOUT"
	// EnvGatewayRetries is the number of attempts made when polling a payment status
	EnvGatewayRetries = "GATEWAY_RETRIES"

	// EnvAgentMode selects the text transform (reverse or echo)
	EnvAgentMode = "AGENT_MODE"

	// EnvStoreDriver selects the job store backend (memory, postgres or sqlite)
	EnvStoreDriver = "STORE_DRIVER"
	// EnvSQLitePath is the database file used by the sqlite store
	EnvSQLitePath = "SQLITE_PATH"
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBName     = "DB_NAME"
	EnvDBSSLMode  = "DB_SSL_MODE"

	// EnvRateLimitRPS is the sustained number of job creations allowed per client IP
	EnvRateLimitRPS = "RATE_LIMIT_RPS"
	// EnvRateLimitBurst is the burst size of the per-IP limiter
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	// EnvEnableDebugEndpoints registers the /jobs and /payments listing routes
	EnvEnableDebugEndpoints = "ENABLE_DEBUG_ENDPOINTS"

	// EnvLogLevel is the logrus level name
	EnvLogLevel = "LOG_LEVEL"
	// EnvLogFormat is either json or text
	EnvLogFormat = "LOG_FORMAT"
)

// PlaceholderAgentIdentifier is the value shipped in example .env files
const PlaceholderAgentIdentifier = "REPLACE"
