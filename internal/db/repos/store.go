// Package repos provides the job stores used by the agent
package repos

import (
	"context"
	"errors"

	"github.com/celestiaorg/echo-agent/internal/db/models"
)

var (
	// ErrJobNotFound is returned when no job exists for the given identifier
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when creating a job whose identifier is already taken
	ErrJobExists = errors.New("job already exists")
)

// UpdateFunc mutates a job in place. Returning an error aborts the update.
type UpdateFunc func(job *models.Job) error

// JobStore is the storage abstraction behind the job service.
// Implementations must serialize Update calls for the same job so that
// concurrent read-modify-write sequences never lose an update.
type JobStore interface {
	// Create stores a new job, assigning a fresh identifier when job.ID is empty
	Create(ctx context.Context, job *models.Job) error
	// Get returns a copy of the job or ErrJobNotFound
	Get(ctx context.Context, id string) (*models.Job, error)
	// Update applies fn to the current record and persists the result atomically
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Job, error)
	// List returns jobs ordered newest first
	List(ctx context.Context, opts *models.ListOptions) ([]models.Job, error)
	// Count returns the number of stored jobs
	Count(ctx context.Context) (int64, error)
	// Delete removes a job or returns ErrJobNotFound
	Delete(ctx context.Context, id string) error
}

var (
	_ JobStore = &MemoryJobRepository{}
	_ JobStore = &JobRepository{}
)
