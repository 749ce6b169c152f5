package repos

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/celestiaorg/echo-agent/internal/db/models"
)

func (s *JobStoreTestSuite) TestCreate() {
	job := s.createTestJob(models.JobStatusAwaitingPayment)
	s.NotEmpty(job.ID)
	s.False(job.CreatedAt.IsZero())

	found, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(job.ID, found.ID)
	s.Equal("buyer_456", found.RequesterID)
	s.Equal(models.JobStatusAwaitingPayment, found.Status)
	s.Equal("Masumi Network rocks!", found.InputData["text"])
}

func (s *JobStoreTestSuite) TestCreate_KeepsGivenID() {
	job := &models.Job{ID: "fixed-id", RequesterID: "r", Status: models.JobStatusPending}
	s.Require().NoError(s.store.Create(s.ctx, job))
	s.Equal("fixed-id", job.ID)

	dup := &models.Job{ID: "fixed-id", RequesterID: "r", Status: models.JobStatusPending}
	err := s.store.Create(s.ctx, dup)
	s.Error(err)
	s.True(errors.Is(err, ErrJobExists), "expected ErrJobExists, got %v", err)
}

func (s *JobStoreTestSuite) TestGet_NotFound() {
	_, err := s.store.Get(s.ctx, "does-not-exist")
	s.Error(err)
	s.True(errors.Is(err, ErrJobNotFound))
}

func (s *JobStoreTestSuite) TestGet_ReturnsCopy() {
	job := s.createTestJob(models.JobStatusPending)

	first, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	first.Status = models.JobStatusFailed
	first.InputData["text"] = "mutated"

	second, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusPending, second.Status)
	s.Equal("Masumi Network rocks!", second.InputData["text"])
}

func (s *JobStoreTestSuite) TestUpdate() {
	job := s.createTestJob(models.JobStatusAwaitingPayment)

	updated, err := s.store.Update(s.ctx, job.ID, func(j *models.Job) error {
		j.Status = models.JobStatusCompleted
		j.Result = "Reversed: !skcor krowteN imusaM"
		return nil
	})
	s.Require().NoError(err)
	s.Equal(models.JobStatusCompleted, updated.Status)

	found, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusCompleted, found.Status)
	s.Equal("Reversed: !skcor krowteN imusaM", found.Result)
}

func (s *JobStoreTestSuite) TestUpdate_ErrorAbortsChanges() {
	job := s.createTestJob(models.JobStatusAwaitingPayment)
	boom := errors.New("boom")

	_, err := s.store.Update(s.ctx, job.ID, func(j *models.Job) error {
		j.Status = models.JobStatusFailed
		return boom
	})
	s.True(errors.Is(err, boom))

	found, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.JobStatusAwaitingPayment, found.Status)
}

func (s *JobStoreTestSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, "missing", func(_ *models.Job) error { return nil })
	s.True(errors.Is(err, ErrJobNotFound))
}

// pollCount reads the counter kept in the input data. SQL stores decode JSON
// numbers as json.Number, so the counter is kept as a string.
func pollCount(job *models.Job) int {
	n, _ := strconv.Atoi(fmt.Sprint(job.InputData["polls"]))
	return n
}

func incrementPolls(j *models.Job) error {
	j.InputData["polls"] = strconv.Itoa(pollCount(j) + 1)
	return nil
}

func (s *JobStoreTestSuite) TestUpdate_Sequential() {
	job := s.createTestJob(models.JobStatusAwaitingPayment)

	for i := 1; i <= 3; i++ {
		updated, err := s.store.Update(s.ctx, job.ID, incrementPolls)
		s.Require().NoError(err)
		s.Equal(i, pollCount(updated))
	}

	found, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(3, pollCount(found))
	s.Equal("Masumi Network rocks!", found.InputData["text"])
}

func (s *JobStoreTestSuite) TestUpdate_ConcurrentNoLostUpdates() {
	job := s.createTestJob(models.JobStatusAwaitingPayment)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(s.ctx, job.ID, incrementPolls)
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(workers, pollCount(found), "every concurrent update should be applied")
}

func (s *JobStoreTestSuite) TestList() {
	for i := 0; i < 3; i++ {
		s.createTestJob(models.JobStatusAwaitingPayment)
		time.Sleep(2 * time.Millisecond)
	}
	completed := s.createTestJob(models.JobStatusCompleted)

	jobs, err := s.store.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(jobs, 4)
	s.Equal(completed.ID, jobs[0].ID, "newest job should be listed first")

	status := models.JobStatusAwaitingPayment
	jobs, err = s.store.List(s.ctx, &models.ListOptions{Status: &status})
	s.Require().NoError(err)
	s.Len(jobs, 3)
	for _, j := range jobs {
		s.Equal(models.JobStatusAwaitingPayment, j.Status)
	}

	jobs, err = s.store.List(s.ctx, &models.ListOptions{Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Len(jobs, 2)

	jobs, err = s.store.List(s.ctx, &models.ListOptions{Offset: 10})
	s.Require().NoError(err)
	s.Empty(jobs)
}

func (s *JobStoreTestSuite) TestCountAndDelete() {
	for i := 0; i < 2; i++ {
		s.createTestJob(models.JobStatusPending)
	}
	job := s.createTestJob(models.JobStatusPending)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	s.Require().NoError(s.store.Delete(s.ctx, job.ID))
	_, err = s.store.Get(s.ctx, job.ID)
	s.True(errors.Is(err, ErrJobNotFound))

	err = s.store.Delete(s.ctx, job.ID)
	s.True(errors.Is(err, ErrJobNotFound), fmt.Sprintf("unexpected error: %v", err))

	count, err = s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}
