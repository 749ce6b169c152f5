package handlers

import (
	"github.com/celestiaorg/echo-agent/internal/db/models"
	"github.com/celestiaorg/echo-agent/internal/payment"
)

// Slug categorizes error responses
type Slug string

// Response slugs
const (
	SuccessSlug      Slug = "success"
	ErrorSlug        Slug = "error"
	InvalidInputSlug Slug = "invalid-input"
	NotFoundSlug     Slug = "not-found"
	GatewayErrorSlug Slug = "gateway-error"
	ServerErrorSlug  Slug = "server-error"
	RateLimitedSlug  Slug = "rate-limited"
)

// Response is the body of every error answer
type Response struct {
	Slug  Slug        `json:"slug"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

func errInvalidInput(msg string) Response {
	return Response{Slug: InvalidInputSlug, Error: msg}
}

func errNotFound(msg string) Response {
	return Response{Slug: NotFoundSlug, Error: msg}
}

func errGateway(msg string) Response {
	return Response{Slug: GatewayErrorSlug, Error: msg}
}

func errServer(msg string) Response {
	return Response{Slug: ServerErrorSlug, Error: msg}
}

// StartJobRequest is the body accepted by both job start endpoints.
// InputData is either a JSON object or the MIP-003 list form [{"key":..,"value":..}].
type StartJobRequest struct {
	RequesterID             string      `json:"requester_id,omitempty"`
	IdentifierFromPurchaser string      `json:"identifier_from_purchaser,omitempty"`
	InputData               interface{} `json:"input_data"`
}

// StartJobResponse is returned when a paid job was created
type StartJobResponse struct {
	Status                    string           `json:"status"`
	JobID                     string           `json:"job_id"`
	PaymentID                 string           `json:"payment_id"`
	BlockchainIdentifier      string           `json:"blockchainIdentifier"`
	PayByTime                 string           `json:"payByTime,omitempty"`
	SubmitResultTime          string           `json:"submitResultTime"`
	UnlockTime                string           `json:"unlockTime"`
	ExternalDisputeUnlockTime string           `json:"externalDisputeUnlockTime"`
	AgentIdentifier           string           `json:"agentIdentifier"`
	SellerVKey                string           `json:"sellerVkey"`
	IdentifierFromPurchaser   string           `json:"identifierFromPurchaser"`
	Network                   string           `json:"network"`
	PaymentType               string           `json:"paymentType"`
	Amounts                   []payment.Amount `json:"amounts"`
	InputHash                 string           `json:"input_hash"`
}

// StartJobDirectResponse is returned when a direct job ran
type StartJobDirectResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Result  string `json:"result"`
	Message string `json:"message"`
}

// StatusResponse reports the current state of a job
type StatusResponse struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Result        string `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`
}

// AvailabilityResponse is the MIP-003 liveness answer
type AvailabilityResponse struct {
	Status  string `json:"status"`
	Type    string `json:"type"`
	Uptime  int64  `json:"uptime"`
	Message string `json:"message"`
}

// SchemaFieldData describes how a client should render an input field
type SchemaFieldData struct {
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
}

// SchemaField is one input accepted by the agent
type SchemaField struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Name string          `json:"name"`
	Data SchemaFieldData `json:"data"`
}

// InputSchemaResponse lists the inputs accepted by the agent
type InputSchemaResponse struct {
	InputData []SchemaField `json:"input_data"`
}

// HealthResponse is the basic health answer
type HealthResponse struct {
	Status string `json:"status"`
}

// DetailedHealthResponse adds runtime information to the health answer
type DetailedHealthResponse struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	JobsCount         int64  `json:"jobs_count"`
	Network           string `json:"network"`
	AgentIdentifier   string `json:"agent_identifier,omitempty"`
	Mode              string `json:"mode"`
	PaymentConfigured bool   `json:"payment_configured"`
}

// RootResponse describes the service
type RootResponse struct {
	Service     string   `json:"service"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Endpoints   []string `json:"endpoints"`
}

// JobsResponse lists stored jobs
type JobsResponse struct {
	Jobs []models.Job `json:"jobs"`
}

// PaymentInfo summarizes the payment attached to a job
type PaymentInfo struct {
	JobID         string `json:"job_id"`
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// PaymentsResponse lists the payments of stored jobs
type PaymentsResponse struct {
	Payments []PaymentInfo `json:"payments"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
