package repos

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/celestiaorg/echo-agent/internal/db/models"
)

// JobRepository provides access to jobs stored in a SQL database through gorm
type JobRepository struct {
	db *gorm.DB
	// mu serializes updates issued by this process; the row lock covers other replicas
	mu sync.Mutex
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job in the database
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Create(job).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get retrieves a job by its ID
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// Update loads the job with a row lock, applies fn and saves it in one transaction
func (r *JobRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to lock job: %w", err)
		}

		if err := fn(&job); err != nil {
			return err
		}
		job.ID = id

		if err := tx.Save(&job).Error; err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// List returns a list of jobs, newest first
// if the status is nil, it will return all jobs regardless of their status
func (r *JobRepository) List(ctx context.Context, opts *models.ListOptions) ([]models.Job, error) {
	o := opts.Normalize()

	qry := r.db.WithContext(ctx).Model(&models.Job{})
	if o.Status != nil {
		qry = qry.Where(models.JobStatusField+" = ?", *o.Status)
	}

	var jobs []models.Job
	err := qry.
		Limit(o.Limit).Offset(o.Offset).
		Order(models.JobCreatedAtField + " DESC").
		Order("id").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Count returns the number of jobs
func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// Delete removes a job permanently
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return nil
}
