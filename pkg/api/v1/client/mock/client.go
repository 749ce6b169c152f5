// Package mock provides a function-field mock of the agent API client
package mock

import (
	"context"
	"time"

	"github.com/celestiaorg/echo-agent/internal/db/models"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/client"
	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	StartJobFn       func(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobResponse, error)
	StartJobDirectFn func(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobDirectResponse, error)
	GetStatusFn      func(ctx context.Context, jobID string) (handlers.StatusResponse, error)
	WaitForJobFn     func(ctx context.Context, jobID string, interval time.Duration) (handlers.StatusResponse, error)
	AvailabilityFn   func(ctx context.Context) (handlers.AvailabilityResponse, error)
	InputSchemaFn    func(ctx context.Context) (handlers.InputSchemaResponse, error)
	HealthCheckFn    func(ctx context.Context) (handlers.HealthResponse, error)
	HealthDetailedFn func(ctx context.Context) (handlers.DetailedHealthResponse, error)
	ListJobsFn       func(ctx context.Context, opts client.ListOptions) ([]models.Job, error)
	ListPaymentsFn   func(ctx context.Context, opts client.ListOptions) ([]handlers.PaymentInfo, error)
	DeleteJobFn      func(ctx context.Context, jobID string) error

	// Call tracking for verification
	StartJobCalls       []handlers.StartJobRequest
	StartJobDirectCalls []handlers.StartJobRequest
	GetStatusCalls      []string
	WaitForJobCalls     []struct {
		JobID    string
		Interval time.Duration
	}
	ListJobsCalls     []client.ListOptions
	ListPaymentsCalls []client.ListOptions
	DeleteJobCalls    []string
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// StartJob implements client.Client
func (m *MockClient) StartJob(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobResponse, error) {
	m.StartJobCalls = append(m.StartJobCalls, req)
	if m.StartJobFn != nil {
		return m.StartJobFn(ctx, req)
	}
	return handlers.StartJobResponse{}, nil
}

// StartJobDirect implements client.Client
func (m *MockClient) StartJobDirect(ctx context.Context, req handlers.StartJobRequest) (handlers.StartJobDirectResponse, error) {
	m.StartJobDirectCalls = append(m.StartJobDirectCalls, req)
	if m.StartJobDirectFn != nil {
		return m.StartJobDirectFn(ctx, req)
	}
	return handlers.StartJobDirectResponse{}, nil
}

// GetStatus implements client.Client
func (m *MockClient) GetStatus(ctx context.Context, jobID string) (handlers.StatusResponse, error) {
	m.GetStatusCalls = append(m.GetStatusCalls, jobID)
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, jobID)
	}
	return handlers.StatusResponse{}, nil
}

// WaitForJob implements client.Client
func (m *MockClient) WaitForJob(ctx context.Context, jobID string, interval time.Duration) (handlers.StatusResponse, error) {
	m.WaitForJobCalls = append(m.WaitForJobCalls, struct {
		JobID    string
		Interval time.Duration
	}{JobID: jobID, Interval: interval})
	if m.WaitForJobFn != nil {
		return m.WaitForJobFn(ctx, jobID, interval)
	}
	return handlers.StatusResponse{}, nil
}

// Availability implements client.Client
func (m *MockClient) Availability(ctx context.Context) (handlers.AvailabilityResponse, error) {
	if m.AvailabilityFn != nil {
		return m.AvailabilityFn(ctx)
	}
	return handlers.AvailabilityResponse{}, nil
}

// InputSchema implements client.Client
func (m *MockClient) InputSchema(ctx context.Context) (handlers.InputSchemaResponse, error) {
	if m.InputSchemaFn != nil {
		return m.InputSchemaFn(ctx)
	}
	return handlers.InputSchemaResponse{}, nil
}

// HealthCheck implements client.Client
func (m *MockClient) HealthCheck(ctx context.Context) (handlers.HealthResponse, error) {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return handlers.HealthResponse{}, nil
}

// HealthDetailed implements client.Client
func (m *MockClient) HealthDetailed(ctx context.Context) (handlers.DetailedHealthResponse, error) {
	if m.HealthDetailedFn != nil {
		return m.HealthDetailedFn(ctx)
	}
	return handlers.DetailedHealthResponse{}, nil
}

// ListJobs implements client.Client
func (m *MockClient) ListJobs(ctx context.Context, opts client.ListOptions) ([]models.Job, error) {
	m.ListJobsCalls = append(m.ListJobsCalls, opts)
	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx, opts)
	}
	return nil, nil
}

// ListPayments implements client.Client
func (m *MockClient) ListPayments(ctx context.Context, opts client.ListOptions) ([]handlers.PaymentInfo, error) {
	m.ListPaymentsCalls = append(m.ListPaymentsCalls, opts)
	if m.ListPaymentsFn != nil {
		return m.ListPaymentsFn(ctx, opts)
	}
	return nil, nil
}

// DeleteJob implements client.Client
func (m *MockClient) DeleteJob(ctx context.Context, jobID string) error {
	m.DeleteJobCalls = append(m.DeleteJobCalls, jobID)
	if m.DeleteJobFn != nil {
		return m.DeleteJobFn(ctx, jobID)
	}
	return nil
}
