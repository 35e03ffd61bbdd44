package repository

import (
	"context"
	"fieldops-client/models"
)

// JobRepositoryInterface defines the contract for the remote-backed job store
type JobRepositoryInterface interface {
	ListJobs(ctx context.Context) ([]*models.Job, error)
	GetStats(ctx context.Context) (*models.JobStats, error)
	GetClock(ctx context.Context, date string) (*models.ClockRecord, error)

	ConfirmAccept(ctx context.Context, jobID string) error
	ConfirmStart(ctx context.Context, jobID string, location models.Location) error
	ConfirmPause(ctx context.Context, jobID, notes string) error
	ConfirmComplete(ctx context.Context, jobID string, timeSpentHours float64, notes string) error

	SaveSignOff(ctx context.Context, record *models.SignOffRecord) error
}
