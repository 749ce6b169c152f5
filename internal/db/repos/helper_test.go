package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/echo-agent/internal/db/models"
)

// JobStoreTestSuite runs the same behavioural checks against every JobStore implementation
type JobStoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    JobStore
	newStore func(t *testing.T) (JobStore, func())
	cleanup  func()
}

func (s *JobStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.cleanup = s.newStore(s.T())
}

func (s *JobStoreTestSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Helper methods for creating test data

func (s *JobStoreTestSuite) createTestJob(status models.JobStatus) *models.Job {
	job := &models.Job{
		RequesterID:   "buyer_456",
		InputData:     datatypes.JSONMap{"text": "Masumi Network rocks!"},
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
	}
	s.Require().NoError(s.store.Create(s.ctx, job))
	return job
}

// newSQLiteStore opens a private in-memory database for one test
func newSQLiteStore(t *testing.T) (JobStore, func()) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to create in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Job{}), "Failed to run database migrations")

	return NewJobRepository(db), func() { _ = sqlDB.Close() }
}

func newMemoryStore(_ *testing.T) (JobStore, func()) {
	return NewMemoryJobRepository(), nil
}

func TestMemoryJobStore(t *testing.T) {
	suite.Run(t, &JobStoreTestSuite{newStore: newMemoryStore})
}

func TestSQLiteJobStore(t *testing.T) {
	suite.Run(t, &JobStoreTestSuite{newStore: newSQLiteStore})
}
