package repos

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/celestiaorg/echo-agent/internal/db/models"
)

// MemoryJobRepository keeps jobs in process memory. Everything is lost on restart.
type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
	now  func() time.Time
}

// NewMemoryJobRepository creates an empty in-memory job store
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs: make(map[string]*models.Job),
		now:  time.Now,
	}
}

// Create stores a new job
func (r *MemoryJobRepository) Create(_ context.Context, job *models.Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := r.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

// Get retrieves a job by its ID
func (r *MemoryJobRepository) Get(_ context.Context, id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job.Clone(), nil
}

// Update applies fn to a copy of the stored job while holding the write lock.
// The copy replaces the stored record only when fn succeeds.
func (r *MemoryJobRepository) Update(_ context.Context, id string, fn UpdateFunc) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = r.now()
	r.jobs[id] = working
	return working.Clone(), nil
}

// List returns jobs newest first, optionally filtered by status
func (r *MemoryJobRepository) List(_ context.Context, opts *models.ListOptions) ([]models.Job, error) {
	o := opts.Normalize()

	r.mu.RLock()
	all := make([]models.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		if o.Status != nil && job.Status != *o.Status {
			continue
		}
		all = append(all, *job.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if o.Offset >= len(all) {
		return []models.Job{}, nil
	}
	end := o.Offset + o.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[o.Offset:end], nil
}

// Count returns the number of stored jobs
func (r *MemoryJobRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.jobs)), nil
}

// Delete removes a job
func (r *MemoryJobRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	delete(r.jobs, id)
	return nil
}
