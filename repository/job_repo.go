package repository

import (
	"context"
	"errors"
	"fieldops-client/gateway"
	"fieldops-client/models"
	"fieldops-client/utils/logger"
)

// JobRepository is the remote-backed store for one technician's jobs, stats,
// clock record and sign-off submissions.
type JobRepository struct {
	remote       gateway.RemoteClientInterface
	technicianID string
	logger       logger.Logger
}

func NewJobRepository(remote gateway.RemoteClientInterface, technicianID string, log logger.Logger) *JobRepository {
	return &JobRepository{
		remote:       remote,
		technicianID: technicianID,
		logger:       log,
	}
}

func (r *JobRepository) ListJobs(ctx context.Context) ([]*models.Job, error) {
	jobs, err := r.remote.GetJobs(ctx, r.technicianID)
	if err != nil {
		return nil, err
	}

	// Jobs arrive as the remote's source of truth; anything the server sends
	// is by definition confirmed.
	for _, j := range jobs {
		j.Confirmation = models.ConfirmationConfirmed
	}
	return jobs, nil
}

func (r *JobRepository) GetStats(ctx context.Context) (*models.JobStats, error) {
	return r.remote.GetJobStats(ctx, r.technicianID)
}

func (r *JobRepository) GetClock(ctx context.Context, date string) (*models.ClockRecord, error) {
	if date == "" {
		return nil, errors.New("clock date is required")
	}
	return r.remote.GetClockRecord(ctx, r.technicianID, date)
}

func (r *JobRepository) ConfirmAccept(ctx context.Context, jobID string) error {
	return r.remote.AcceptJob(ctx, jobID, r.technicianID)
}

func (r *JobRepository) ConfirmStart(ctx context.Context, jobID string, location models.Location) error {
	return r.remote.StartJob(ctx, jobID, r.technicianID, location)
}

func (r *JobRepository) ConfirmPause(ctx context.Context, jobID, notes string) error {
	// Pause has no dedicated endpoint; it is a status write back to accepted.
	return r.remote.UpdateJobStatus(ctx, jobID, models.JobStatusAccepted, notes)
}

func (r *JobRepository) ConfirmComplete(ctx context.Context, jobID string, timeSpentHours float64, notes string) error {
	return r.remote.CompleteJob(ctx, jobID, r.technicianID, timeSpentHours, notes)
}

func (r *JobRepository) SaveSignOff(ctx context.Context, record *models.SignOffRecord) error {
	if record == nil || record.JobID == "" {
		return errors.New("sign-off record with a job ID is required")
	}
	return r.remote.SubmitSignOff(ctx, record)
}
