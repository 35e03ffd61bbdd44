package repository

import (
	"context"
	"errors"
	"fieldops-client/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRemoteClient implements the RemoteClientInterface for testing
type MockRemoteClient struct {
	mock.Mock
}

func (m *MockRemoteClient) GetJobs(ctx context.Context, technicianID string) ([]*models.Job, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Job), args.Error(1)
}

func (m *MockRemoteClient) GetJobStats(ctx context.Context, technicianID string) (*models.JobStats, error) {
	args := m.Called(ctx, technicianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobStats), args.Error(1)
}

func (m *MockRemoteClient) GetClockRecord(ctx context.Context, technicianID, date string) (*models.ClockRecord, error) {
	args := m.Called(ctx, technicianID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClockRecord), args.Error(1)
}

func (m *MockRemoteClient) AcceptJob(ctx context.Context, jobID, technicianID string) error {
	args := m.Called(ctx, jobID, technicianID)
	return args.Error(0)
}

func (m *MockRemoteClient) StartJob(ctx context.Context, jobID, technicianID string, location models.Location) error {
	args := m.Called(ctx, jobID, technicianID, location)
	return args.Error(0)
}

func (m *MockRemoteClient) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, notes string) error {
	args := m.Called(ctx, jobID, status, notes)
	return args.Error(0)
}

func (m *MockRemoteClient) CompleteJob(ctx context.Context, jobID, technicianID string, timeSpentHours float64, notes string) error {
	args := m.Called(ctx, jobID, technicianID, timeSpentHours, notes)
	return args.Error(0)
}

func (m *MockRemoteClient) SubmitSignOff(ctx context.Context, record *models.SignOffRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func TestListJobsTagsEverythingConfirmed(t *testing.T) {
	remote := &MockRemoteClient{}
	repo := NewJobRepository(remote, "tech-1", nil)

	remote.On("GetJobs", mock.Anything, "tech-1").Return([]*models.Job{
		{JobID: "job-1", Status: models.JobStatusAssigned, Confirmation: models.ConfirmationPending},
		{JobID: "job-2", Status: models.JobStatusInProgress},
	}, nil)

	jobs, err := repo.ListJobs(context.Background())

	assert.NoError(t, err)
	for _, j := range jobs {
		assert.Equal(t, models.ConfirmationConfirmed, j.Confirmation)
	}
	remote.AssertExpectations(t)
}

func TestListJobsPropagatesFailure(t *testing.T) {
	remote := &MockRemoteClient{}
	repo := NewJobRepository(remote, "tech-1", nil)

	remote.On("GetJobs", mock.Anything, "tech-1").Return(nil, &models.SyncFailureError{
		Kind:     models.SyncFailureNetwork,
		Endpoint: "/jobs",
		Err:      errors.New("unreachable"),
	})

	_, err := repo.ListJobs(context.Background())

	var failure *models.SyncFailureError
	assert.ErrorAs(t, err, &failure)
}

func TestPauseWritesAcceptedStatus(t *testing.T) {
	remote := &MockRemoteClient{}
	repo := NewJobRepository(remote, "tech-1", nil)

	remote.On("UpdateJobStatus", mock.Anything, "job-1", models.JobStatusAccepted, "lunch break").Return(nil)

	assert.NoError(t, repo.ConfirmPause(context.Background(), "job-1", "lunch break"))
	remote.AssertExpectations(t)
}

func TestGetClockRequiresDate(t *testing.T) {
	repo := NewJobRepository(&MockRemoteClient{}, "tech-1", nil)

	_, err := repo.GetClock(context.Background(), "")
	assert.Error(t, err)
}

func TestSaveSignOffRequiresJobID(t *testing.T) {
	repo := NewJobRepository(&MockRemoteClient{}, "tech-1", nil)

	assert.Error(t, repo.SaveSignOff(context.Background(), nil))
	assert.Error(t, repo.SaveSignOff(context.Background(), &models.SignOffRecord{}))
}
