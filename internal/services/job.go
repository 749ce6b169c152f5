// Package services implements the job lifecycle on top of the job store,
// the text transform and the payment gateway
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/celestiaorg/echo-agent/internal/agent"
	"github.com/celestiaorg/echo-agent/internal/db/models"
	"github.com/celestiaorg/echo-agent/internal/db/repos"
	"github.com/celestiaorg/echo-agent/internal/events"
	"github.com/celestiaorg/echo-agent/internal/logger"
	"github.com/celestiaorg/echo-agent/internal/metrics"
	"github.com/celestiaorg/echo-agent/internal/payment"
)

const (
	// ErrMsgPaymentTimedOut is stored on jobs whose payment never arrived
	ErrMsgPaymentTimedOut = "payment timed out"
	// ErrMsgPaymentFailed is stored on jobs whose payment was refunded or invalid
	ErrMsgPaymentFailed = "payment failed"

	pathPaid   = "paid"
	pathDirect = "direct"

	// sweepBatch is the page size used when scanning awaiting jobs
	sweepBatch = 100
)

// JobOptions configures the job service
type JobOptions struct {
	// Mode selects the text transformation
	Mode agent.Mode
	// PaymentTimeout is how long a job may wait for its payment; zero disables expiry
	PaymentTimeout time.Duration
	// Amounts is the price requested for every paid job
	Amounts []payment.Amount
	// PaymentConfigErr, when set, explains why the paid path is unavailable
	PaymentConfigErr error
}

// Job provides business logic for job operations
type Job struct {
	store   repos.JobStore
	gateway payment.Gateway
	events  events.Publisher
	opts    JobOptions
	now     func() time.Time
}

// NewJobService creates a new job service instance. A nil gateway disables the paid path.
func NewJobService(store repos.JobStore, gateway payment.Gateway, publisher events.Publisher, opts JobOptions) *Job {
	if opts.Mode == "" {
		opts.Mode = agent.ModeReverse
	}
	return &Job{
		store:   store,
		gateway: gateway,
		events:  publisher,
		opts:    opts,
		now:     time.Now,
	}
}

// Subscribe registers the service's event handlers on the bus
func (s *Job) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventJobCompleted, s.HandleJobCompleted)
}

// PaymentConfigured reports whether the paid path is available
func (s *Job) PaymentConfigured() error {
	if s.gateway != nil && s.opts.PaymentConfigErr == nil {
		return nil
	}
	if s.opts.PaymentConfigErr != nil {
		return fmt.Errorf("%w: %v", ErrNotConfigured, s.opts.PaymentConfigErr)
	}
	return ErrNotConfigured
}

// StartPaidJob records a job awaiting payment and opens a payment request for it
func (s *Job) StartPaidJob(ctx context.Context, requesterID string, input map[string]interface{}) (*models.Job, error) {
	if err := s.PaymentConfigured(); err != nil {
		return nil, err
	}
	if err := validateRequest(requesterID, input); err != nil {
		return nil, err
	}

	job := &models.Job{
		RequesterID:   requesterID,
		InputData:     datatypes.JSONMap(input),
		Status:        models.JobStatusAwaitingPayment,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	metrics.RecordJobCreated(pathPaid)

	req, err := s.gateway.CreatePayment(ctx, payment.CreateRequest{
		JobID:                   job.ID,
		IdentifierFromPurchaser: requesterID,
		Input:                   input,
		Amounts:                 s.opts.Amounts,
	})
	if err != nil {
		metrics.RecordGatewayError("create_payment")
		logger.ErrorWithFields("Failed to create payment request", map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		if _, ferr := s.settle(ctx, job.ID, models.JobStatusFailed, models.PaymentStatusFailed, "", "payment request failed"); ferr != nil {
			logger.Errorf("Failed to mark job %s as failed: %v", job.ID, ferr)
		}
		return nil, fmt.Errorf("failed to create payment for job %s: %w", job.ID, err)
	}

	updated, err := s.store.Update(ctx, job.ID, func(j *models.Job) error {
		j.PaymentID = req.BlockchainIdentifier
		j.InputHash = req.InputHash
		j.PayByTime = req.PayByTime
		j.SubmitResultTime = req.SubmitResultTime
		j.UnlockTime = req.UnlockTime
		j.ExternalDisputeUnlockTime = req.ExternalDisputeUnlockTime
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store payment for job %s: %w", job.ID, err)
	}

	logger.InfoWithFields("Started paid job", map[string]interface{}{
		"job_id":     updated.ID,
		"payment_id": updated.PaymentID,
	})
	return updated, nil
}

// StartDirectJob records a job and completes it immediately without payment
func (s *Job) StartDirectJob(ctx context.Context, requesterID string, input map[string]interface{}) (*models.Job, error) {
	if err := validateRequest(requesterID, input); err != nil {
		return nil, err
	}

	job := &models.Job{
		RequesterID:   requesterID,
		InputData:     datatypes.JSONMap(input),
		Status:        models.JobStatusPending,
		PaymentStatus: models.PaymentStatusBypassed,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	metrics.RecordJobCreated(pathDirect)

	result, err := agent.Transform(s.opts.Mode, input)
	if err != nil {
		if _, ferr := s.settle(ctx, job.ID, models.JobStatusFailed, models.PaymentStatusBypassed, "", err.Error()); ferr != nil {
			logger.Errorf("Failed to mark job %s as failed: %v", job.ID, ferr)
		}
		return nil, fmt.Errorf("failed to run job %s: %w", job.ID, err)
	}

	completed, err := s.settle(ctx, job.ID, models.JobStatusCompleted, models.PaymentStatusBypassed, result, "")
	if err != nil {
		return nil, fmt.Errorf("failed to complete job %s: %w", job.ID, err)
	}
	logger.Infof("Completed direct job %s", completed.ID)
	return completed, nil
}

// GetStatus returns the job, first settling it against the payment service when it
// is still awaiting payment. Payment service failures leave the job awaiting payment.
func (s *Job) GetStatus(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.getJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusAwaitingPayment {
		return job, nil
	}
	return s.reconcile(ctx, job)
}

// SettleAwaitingJobs checks every job awaiting payment against the payment service,
// running paid jobs and failing refunded or timed out ones. It returns the number
// of jobs that reached a terminal status.
func (s *Job) SettleAwaitingJobs(ctx context.Context) (int, error) {
	awaiting := models.JobStatusAwaitingPayment
	settled, offset := 0, 0
	for {
		jobs, err := s.store.List(ctx, &models.ListOptions{Limit: sweepBatch, Offset: offset, Status: &awaiting})
		if err != nil {
			return settled, fmt.Errorf("failed to list awaiting jobs: %w", err)
		}
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return settled, err
			}
			job, err := s.reconcile(ctx, &jobs[i])
			if err != nil {
				return settled, err
			}
			// Settled jobs leave the filtered listing
			if job.Status.IsTerminal() {
				settled++
				continue
			}
			offset++
		}
		if len(jobs) < sweepBatch {
			return settled, nil
		}
	}
}

// reconcile asks the payment service about an awaiting job and settles it when the
// payment is decided. A job the service still reports as pending fails once the
// payment timeout has elapsed.
func (s *Job) reconcile(ctx context.Context, job *models.Job) (*models.Job, error) {
	if job.PaymentID != "" && s.gateway != nil {
		switch s.gateway.CheckStatus(ctx, job.PaymentID) {
		case payment.StatusCompleted:
			result, err := agent.Transform(s.opts.Mode, job.InputData)
			if err != nil {
				return s.settleAndPublish(ctx, job, models.JobStatusFailed, models.PaymentStatusCompleted, "", err.Error())
			}
			return s.settleAndPublish(ctx, job, models.JobStatusCompleted, models.PaymentStatusCompleted, result, "")
		case payment.StatusFailed:
			return s.settleAndPublish(ctx, job, models.JobStatusFailed, models.PaymentStatusFailed, "", ErrMsgPaymentFailed)
		}
	}

	if s.expired(job) {
		logger.WarnWithFields("Payment window elapsed", map[string]interface{}{
			"job_id":     job.ID,
			"payment_id": job.PaymentID,
		})
		return s.settleAndPublish(ctx, job, models.JobStatusFailed, models.PaymentStatusFailed, "", ErrMsgPaymentTimedOut)
	}
	return job, nil
}

// ListJobs retrieves a paginated list of jobs
func (s *Job) ListJobs(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	return s.store.List(ctx, opts)
}

// CountJobs returns the number of stored jobs
func (s *Job) CountJobs(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// DeleteJob removes a job
func (s *Job) DeleteJob(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repos.ErrJobNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	logger.Infof("Deleted job %s", id)
	return nil
}

// HandleJobCompleted submits the result hash of a completed paid job to the payment service
func (s *Job) HandleJobCompleted(ctx context.Context, e events.Event) error {
	if e.PaymentID == "" || s.gateway == nil {
		return nil
	}
	hash := payment.ResultHash(e.RequesterID, e.Result)
	if err := s.gateway.MarkComplete(ctx, e.PaymentID, hash); err != nil {
		metrics.RecordGatewayError("submit_result")
		return fmt.Errorf("failed to submit result for job %s: %w", e.JobID, err)
	}
	return nil
}

func (s *Job) getJob(ctx context.Context, id string) (*models.Job, error) {
	if id == "" {
		return nil, NewValidationError("job_id", "is required")
	}
	job, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repos.ErrJobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

func (s *Job) expired(job *models.Job) bool {
	return s.opts.PaymentTimeout > 0 && s.now().Sub(job.CreatedAt) > s.opts.PaymentTimeout
}

// settleAndPublish moves an awaiting job into a terminal status. Only the caller
// that performs the transition publishes the lifecycle event; the others get the
// record as it was settled.
func (s *Job) settleAndPublish(ctx context.Context, job *models.Job, status models.JobStatus, paymentStatus models.PaymentStatus, result, errMsg string) (*models.Job, error) {
	settled, err := s.settle(ctx, job.ID, status, paymentStatus, result, errMsg)
	if errors.Is(err, errSettled) {
		return s.getJob(ctx, job.ID)
	}
	if err != nil {
		return nil, err
	}

	event := events.Event{
		JobID:       settled.ID,
		PaymentID:   settled.PaymentID,
		RequesterID: settled.RequesterID,
	}
	if status == models.JobStatusCompleted {
		event.Type = events.EventJobCompleted
		event.Result = settled.Result
	} else {
		event.Type = events.EventJobFailed
		event.Error = settled.Error
	}
	if s.events != nil {
		s.events.Publish(event)
	}
	return settled, nil
}

// settle applies a terminal transition if the job is not terminal yet
func (s *Job) settle(ctx context.Context, id string, status models.JobStatus, paymentStatus models.PaymentStatus, result, errMsg string) (*models.Job, error) {
	settled, err := s.store.Update(ctx, id, func(j *models.Job) error {
		if j.Status.IsTerminal() {
			return errSettled
		}
		now := s.now()
		j.Status = status
		j.PaymentStatus = paymentStatus
		j.Result = result
		j.Error = errMsg
		j.CompletedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, errSettled) {
			return nil, err
		}
		if errors.Is(err, repos.ErrJobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to update job %s: %w", id, err)
	}

	metrics.RecordJobTransition(status.String())
	logger.InfoWithFields("Job settled", map[string]interface{}{
		"job_id": id,
		"status": status.String(),
	})
	return settled, nil
}

func validateRequest(requesterID string, input map[string]interface{}) error {
	if requesterID == "" {
		return NewValidationError("requester_id", "is required")
	}
	if len(input) == 0 {
		return NewValidationError("input_data", "is required")
	}
	if _, err := agent.ExtractText(input); err != nil {
		return NewValidationError("input_data", err.Error())
	}
	return nil
}
