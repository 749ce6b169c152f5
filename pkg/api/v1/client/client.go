// Package client provides the API client for interacting with an echo agent
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/internal/db/models"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/routes"
)

const (
	// DefaultTimeout is the default timeout for API requests
	DefaultTimeout = 30 * time.Second
	// DefaultPollInterval is the default delay between status polls in WaitForJob
	DefaultPollInterval = 5 * time.Second
)

// Client is the interface for API client
type Client interface {
	// Agent Endpoints
	StartJob(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobResponse, error)
	StartJobDirect(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobDirectResponse, error)
	GetStatus(ctx context.Context, jobID string) (handlers.StatusResponse, error)
	WaitForJob(ctx context.Context, jobID string, interval time.Duration) (handlers.StatusResponse, error)
	Availability(ctx context.Context) (handlers.AvailabilityResponse, error)
	InputSchema(ctx context.Context) (handlers.InputSchemaResponse, error)

	// Health Check
	HealthCheck(ctx context.Context) (handlers.HealthResponse, error)
	HealthDetailed(ctx context.Context) (handlers.DetailedHealthResponse, error)

	// Debug Endpoints
	ListJobs(ctx context.Context, opts ListOptions) ([]models.Job, error)
	ListPayments(ctx context.Context, opts ListOptions) ([]handlers.PaymentInfo, error)
	DeleteJob(ctx context.Context, jobID string) error
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// ListOptions filters the debug listings
type ListOptions struct {
	Page   int
	Status string
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	// Resolve the endpoint URL
	fullURL := c.baseURL + endpoint

	// Create a new agent based on the HTTP method
	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	// Set common headers
	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	// Add body if provided
	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	// Execute the request
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	// Check for non-success status codes
	if statusCode < 200 || statusCode >= 300 {
		// Prefer the error message of a slug response, fall back to the raw body
		var slugResponse handlers.Response
		if err := json.Unmarshal(body, &slugResponse); err == nil && slugResponse.Error != "" {
			return &fiber.Error{Code: statusCode, Message: slugResponse.Error}
		}
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	// Decode the response body if a target is provided
	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// StatusCode returns the HTTP status carried by an API error, or 0
func StatusCode(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return 0
}

// Agent Endpoints

// StartJob creates a job that waits for payment
func (c *APIClient) StartJob(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobResponse, error) {
	var response handlers.StartJobResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.StartJobURL(), req, &response)
	return response, err
}

// StartJobDirect runs a job without payment
func (c *APIClient) StartJobDirect(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobDirectResponse, error) {
	var response handlers.StartJobDirectResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.StartJobDirectURL(), req, &response)
	return response, err
}

// GetStatus retrieves the status of a job
func (c *APIClient) GetStatus(ctx context.Context, jobID string) (handlers.StatusResponse, error) {
	var response handlers.StatusResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.GetStatusURL(jobID), nil, &response)
	return response, err
}

// WaitForJob polls a job until it reaches a terminal status or ctx is done
func (c *APIClient) WaitForJob(ctx context.Context, jobID string, interval time.Duration) (handlers.StatusResponse, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last handlers.StatusResponse
	for {
		status, err := c.GetStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			return last, err
		}
		last = status
		if parsed, err := models.ParseJobStatus(status.Status); err == nil && parsed.IsTerminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Availability reports whether the agent accepts jobs
func (c *APIClient) Availability(ctx context.Context) (handlers.AvailabilityResponse, error) {
	var response handlers.AvailabilityResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.AvailabilityURL(), nil, &response)
	return response, err
}

// InputSchema retrieves the input accepted by the agent
func (c *APIClient) InputSchema(ctx context.Context) (handlers.InputSchemaResponse, error) {
	var response handlers.InputSchemaResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.InputSchemaURL(), nil, &response)
	return response, err
}

// Health Check

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (handlers.HealthResponse, error) {
	var response handlers.HealthResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), nil, &response)
	return response, err
}

// HealthDetailed retrieves runtime information about the agent
func (c *APIClient) HealthDetailed(ctx context.Context) (handlers.DetailedHealthResponse, error) {
	var response handlers.DetailedHealthResponse
	err := c.executeRequest(ctx, http.MethodGet, routes.HealthDetailedURL(), nil, &response)
	return response, err
}

// Debug Endpoints

func getQueryParams(opts ListOptions) url.Values {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	return q
}

// ListJobs lists stored jobs
func (c *APIClient) ListJobs(ctx context.Context, opts ListOptions) ([]models.Job, error) {
	var response handlers.JobsResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.ListJobsURL(getQueryParams(opts)), nil, &response); err != nil {
		return nil, err
	}
	return response.Jobs, nil
}

// ListPayments lists the payments attached to stored jobs
func (c *APIClient) ListPayments(ctx context.Context, opts ListOptions) ([]handlers.PaymentInfo, error) {
	var response handlers.PaymentsResponse
	if err := c.executeRequest(ctx, http.MethodGet, routes.ListPaymentsURL(getQueryParams(opts)), nil, &response); err != nil {
		return nil, err
	}
	return response.Payments, nil
}

// DeleteJob deletes a job
func (c *APIClient) DeleteJob(ctx context.Context, jobID string) error {
	return c.executeRequest(ctx, http.MethodDelete, routes.DeleteJobURL(jobID), nil, nil)
}
