package worker

import (
	"context"
	"errors"
	"fieldops-client/cache"
	"fieldops-client/models"
	"fieldops-client/services"
	"fieldops-client/utils"
	"fieldops-client/utils/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockLogger implements the logger interface for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{}) {
	m.Called(args)
}

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Info(args ...interface{}) {
	m.Called(args)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(args ...interface{}) {
	m.Called(args)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Error(args ...interface{}) {
	m.Called(args)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Fatal(args ...interface{}) {
	m.Called(args)
}

func (m *MockLogger) Fatalf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

func allowAllLogs(l *MockLogger) {
	l.On("Debug", mock.Anything).Return().Maybe()
	l.On("Debugf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Info", mock.Anything).Return().Maybe()
	l.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Warn", mock.Anything).Return().Maybe()
	l.On("Warnf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Error", mock.Anything).Return().Maybe()
	l.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("WithField", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
}

// MockJobRepository implements the JobRepositoryInterface for testing
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) ListJobs(ctx context.Context) ([]*models.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Job), args.Error(1)
}

func (m *MockJobRepository) GetStats(ctx context.Context) (*models.JobStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobStats), args.Error(1)
}

func (m *MockJobRepository) GetClock(ctx context.Context, date string) (*models.ClockRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClockRecord), args.Error(1)
}

func (m *MockJobRepository) ConfirmAccept(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobRepository) ConfirmStart(ctx context.Context, jobID string, location models.Location) error {
	args := m.Called(ctx, jobID, location)
	return args.Error(0)
}

func (m *MockJobRepository) ConfirmPause(ctx context.Context, jobID, notes string) error {
	args := m.Called(ctx, jobID, notes)
	return args.Error(0)
}

func (m *MockJobRepository) ConfirmComplete(ctx context.Context, jobID string, timeSpentHours float64, notes string) error {
	args := m.Called(ctx, jobID, timeSpentHours, notes)
	return args.Error(0)
}

func (m *MockJobRepository) SaveSignOff(ctx context.Context, record *models.SignOffRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// SyncCoordinatorTestSuite covers the refresh and fallback behavior
type SyncCoordinatorTestSuite struct {
	suite.Suite
	ctx         context.Context
	mockRepo    *MockJobRepository
	mockLogger  *MockLogger
	state       *services.TechnicianState
	snapshots   *cache.SnapshotCache
	coordinator *SyncCoordinator
}

func (suite *SyncCoordinatorTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = &MockJobRepository{}
	suite.mockLogger = &MockLogger{}
	allowAllLogs(suite.mockLogger)

	suite.state = services.NewTechnicianState()
	suite.snapshots = cache.NewSnapshotCache("", nil, suite.mockLogger)

	cfg := &models.Config{JobPollSeconds: 8, StatsPollSeconds: 60}
	coordinator, err := NewSyncCoordinator(cfg, suite.mockRepo, suite.state, suite.snapshots, "tech-1", suite.mockLogger)
	assert.NoError(suite.T(), err)
	suite.coordinator = coordinator
}

func (suite *SyncCoordinatorTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *SyncCoordinatorTestSuite) TestJobsReplacedWholesale() {
	suite.state.ReplaceJobs([]*models.Job{
		{JobID: "old-1", TechnicianID: "tech-1", Status: models.JobStatusAssigned},
	})
	fresh := []*models.Job{
		{JobID: "job-1", TechnicianID: "tech-1", Status: models.JobStatusInProgress},
		{JobID: "job-2", TechnicianID: "tech-1", Status: models.JobStatusAssigned},
	}
	suite.mockRepo.On("ListJobs", suite.ctx).Return(fresh, nil)

	suite.coordinator.RefreshJobs(suite.ctx)

	jobs := suite.state.AllJobs()
	assert.Len(suite.T(), jobs, 2)
	_, stillThere := suite.state.Job("old-1")
	assert.False(suite.T(), stillThere)

	stats, _ := suite.state.Stats()
	assert.Equal(suite.T(), 1, stats.InProgress)
	assert.Equal(suite.T(), 1, stats.Assigned)
}

func (suite *SyncCoordinatorTestSuite) TestFailedJobRefreshKeepsPreviousList() {
	suite.state.ReplaceJobs([]*models.Job{
		{JobID: "job-1", TechnicianID: "tech-1", Status: models.JobStatusAccepted},
	})
	suite.mockRepo.On("ListJobs", suite.ctx).Return(nil, &models.SyncFailureError{
		Kind:     models.SyncFailureTimeout,
		Endpoint: "/jobs",
		Err:      errors.New("deadline exceeded"),
	})

	suite.coordinator.RefreshJobs(suite.ctx)

	jobs := suite.state.AllJobs()
	assert.Len(suite.T(), jobs, 1)
	assert.Equal(suite.T(), "job-1", jobs[0].JobID)

	status := suite.coordinator.Status()
	assert.False(suite.T(), status.Jobs.OK)
	assert.Contains(suite.T(), status.Jobs.Error, "deadline exceeded")
}

func (suite *SyncCoordinatorTestSuite) TestStatsFallBackToSnapshotRegardlessOfAge() {
	stale := models.JobStats{Assigned: 3, Completed: 7}
	capturedAt := time.Now().Add(-48 * time.Hour)
	assert.NoError(suite.T(), suite.snapshots.Set("stats/tech-1", stale, capturedAt))

	suite.mockRepo.On("GetStats", suite.ctx).Return(nil, errors.New("network unreachable"))

	suite.coordinator.RefreshStats(suite.ctx)

	stats, at := suite.state.Stats()
	assert.Equal(suite.T(), stale, stats)
	assert.Equal(suite.T(), capturedAt.Unix(), at.Unix())
	assert.False(suite.T(), stats.IsZero())

	status := suite.coordinator.Status()
	assert.False(suite.T(), status.Stats.OK)
	assert.True(suite.T(), status.Stats.FromSnapshot)
}

func (suite *SyncCoordinatorTestSuite) TestStatsSuccessWritesSnapshot() {
	fresh := &models.JobStats{Assigned: 1, InProgress: 2}
	suite.mockRepo.On("GetStats", suite.ctx).Return(fresh, nil)

	suite.coordinator.RefreshStats(suite.ctx)

	var cached models.JobStats
	_, ok, err := suite.snapshots.Get("stats/tech-1", &cached)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), *fresh, cached)
}

func (suite *SyncCoordinatorTestSuite) TestClockFallsBackToSnapshot() {
	date := utils.DateKey(time.Now())
	cached := models.ClockRecord{TechnicianID: "tech-1", Date: date, HoursWorked: 5.5}
	assert.NoError(suite.T(), suite.snapshots.Set("clock/tech-1/"+date, cached, time.Now().Add(-time.Hour)))

	suite.mockRepo.On("GetClock", suite.ctx, date).Return(nil, errors.New("connection refused"))

	suite.coordinator.RefreshClock(suite.ctx)

	record, _ := suite.state.Clock()
	assert.Equal(suite.T(), 5.5, record.HoursWorked)
	assert.False(suite.T(), record.Estimated)
}

func (suite *SyncCoordinatorTestSuite) TestClockEstimateFromClockIn() {
	date := utils.DateKey(time.Now())
	assert.NoError(suite.T(), suite.coordinator.MarkClockIn())
	suite.mockRepo.On("GetClock", suite.ctx, date).Return(nil, errors.New("connection refused"))

	// No clock snapshot exists, only the clock-in instant.
	suite.coordinator.RefreshClock(suite.ctx)

	record, _ := suite.state.Clock()
	assert.True(suite.T(), record.Estimated)
	assert.Equal(suite.T(), date, record.Date)
	assert.GreaterOrEqual(suite.T(), record.HoursWorked, 0.0)

	status := suite.coordinator.Status()
	assert.True(suite.T(), status.Clock.FromSnapshot)
}

func (suite *SyncCoordinatorTestSuite) TestClockFailureWithNoFallback() {
	date := utils.DateKey(time.Now())
	suite.mockRepo.On("GetClock", suite.ctx, date).Return(nil, errors.New("connection refused"))

	suite.coordinator.RefreshClock(suite.ctx)

	record, _ := suite.state.Clock()
	assert.Empty(suite.T(), record.Date)

	status := suite.coordinator.Status()
	assert.False(suite.T(), status.Clock.OK)
	assert.False(suite.T(), status.Clock.FromSnapshot)
}

func (suite *SyncCoordinatorTestSuite) TestStartAndStop() {
	suite.mockRepo.On("ListJobs", mock.Anything).Return([]*models.Job{}, nil).Maybe()
	suite.mockRepo.On("GetStats", mock.Anything).Return(&models.JobStats{}, nil).Maybe()
	suite.mockRepo.On("GetClock", mock.Anything, mock.Anything).Return(&models.ClockRecord{}, nil).Maybe()

	assert.NoError(suite.T(), suite.coordinator.Start())
	assert.True(suite.T(), suite.coordinator.IsRunning())
	assert.Error(suite.T(), suite.coordinator.Start())

	suite.coordinator.Stop()
	assert.False(suite.T(), suite.coordinator.IsRunning())
}

func TestSyncCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(SyncCoordinatorTestSuite))
}

func TestCronSpecForSeconds(t *testing.T) {
	assert.Equal(t, "*/8 * * * * *", cronSpecForSeconds(8))
	assert.Equal(t, "*/30 * * * * *", cronSpecForSeconds(30))
	assert.Equal(t, "0 * * * * *", cronSpecForSeconds(60))
	assert.Equal(t, "0 */5 * * * *", cronSpecForSeconds(300))
}
