package gateway

import (
	"context"
	"fieldops-client/models"
)

// RemoteClientInterface defines the contract for the field-service API client
type RemoteClientInterface interface {
	// Reads
	GetJobs(ctx context.Context, technicianID string) ([]*models.Job, error)
	GetJobStats(ctx context.Context, technicianID string) (*models.JobStats, error)
	GetClockRecord(ctx context.Context, technicianID, date string) (*models.ClockRecord, error)

	// Transition confirmations
	AcceptJob(ctx context.Context, jobID, technicianID string) error
	StartJob(ctx context.Context, jobID, technicianID string, location models.Location) error
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, notes string) error
	CompleteJob(ctx context.Context, jobID, technicianID string, timeSpentHours float64, notes string) error

	// Sign-off
	SubmitSignOff(ctx context.Context, record *models.SignOffRecord) error
}
