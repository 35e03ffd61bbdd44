package services

import (
	"context"
	"fieldops-client/models"
	"fieldops-client/repository"
	"fieldops-client/utils/logger"
	"time"
)

// LocationProvider supplies the current device location fix.
type LocationProvider interface {
	CurrentLocation() (models.Location, bool)
}

// CompletionGate decides whether a job's sign-off allows completion and, if
// not, which conditions are unmet.
type CompletionGate interface {
	CanComplete(jobID string) (bool, []string)
}

// JobStateMachine owns the legal transitions of the technician's jobs:
// assigned -> accepted -> in_progress -> completed, with pause regressing an
// in-progress job back to accepted. Every legal transition mutates local
// state first and then confirms with the remote source; a failed
// confirmation is tagged rejected but never rolled back, the next successful
// sync overwrites it.
type JobStateMachine struct {
	state        *TechnicianState
	repo         repository.JobRepositoryInterface
	location     LocationProvider
	gate         CompletionGate
	logger       logger.Logger
	technicianID string
	now          func() time.Time

	attempts chan struct{}
}

func NewJobStateMachine(
	state *TechnicianState,
	repo repository.JobRepositoryInterface,
	location LocationProvider,
	gate CompletionGate,
	technicianID string,
	log logger.Logger,
) *JobStateMachine {
	m := &JobStateMachine{
		state:        state,
		repo:         repo,
		location:     location,
		gate:         gate,
		logger:       log,
		technicianID: technicianID,
		now:          time.Now,
		attempts:     make(chan struct{}, 1),
	}
	m.attempts <- struct{}{}
	return m
}

// AttemptTransition applies one technician action to one job. Illegal pairs
// return IllegalTransitionError without mutating anything. notes travels
// with pause and complete.
func (m *JobStateMachine) AttemptTransition(
	ctx context.Context,
	jobID string,
	action models.TransitionAction,
	technicianID string,
	notes string,
) (models.Job, error) {
	// One attempt at a time; a concurrent attempt observes the state the
	// previous one already applied.
	<-m.attempts
	defer func() { m.attempts <- struct{}{} }()

	job, ok := m.state.Job(jobID)
	if !ok {
		return models.Job{}, models.ErrJobNotFound
	}

	if job.TechnicianID != technicianID {
		return models.Job{}, models.ErrNotJobOwner
	}

	switch action {
	case models.ActionAccept:
		return m.accept(ctx, job)
	case models.ActionStart:
		return m.start(ctx, job)
	case models.ActionPause:
		return m.pause(ctx, job, notes)
	case models.ActionComplete:
		return m.complete(ctx, job, notes)
	default:
		return models.Job{}, &models.IllegalTransitionError{Status: job.Status, Action: action}
	}
}

func (m *JobStateMachine) accept(ctx context.Context, job models.Job) (models.Job, error) {
	if job.Status != models.JobStatusAssigned {
		return models.Job{}, &models.IllegalTransitionError{Status: job.Status, Action: models.ActionAccept}
	}

	now := m.now()
	updated := m.apply(job.JobID, func(j *models.Job) {
		j.Status = models.JobStatusAccepted
		if j.AcceptedAt == nil {
			j.AcceptedAt = &now
		}
		j.Confirmation = models.ConfirmationPending
	})

	m.confirm(ctx, job.JobID, models.ActionAccept, func() error {
		return m.repo.ConfirmAccept(ctx, job.JobID)
	})

	return updated, nil
}

func (m *JobStateMachine) start(ctx context.Context, job models.Job) (models.Job, error) {
	if job.Status != models.JobStatusAccepted {
		return models.Job{}, &models.IllegalTransitionError{Status: job.Status, Action: models.ActionStart}
	}

	// Hard precondition: no location fix, no start.
	loc, ok := m.location.CurrentLocation()
	if !ok {
		return models.Job{}, &models.PreconditionMissingError{Missing: "location fix"}
	}

	now := m.now()
	updated := m.apply(job.JobID, func(j *models.Job) {
		j.Status = models.JobStatusInProgress
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
		j.Confirmation = models.ConfirmationPending
	})

	m.confirm(ctx, job.JobID, models.ActionStart, func() error {
		return m.repo.ConfirmStart(ctx, job.JobID, loc)
	})

	return updated, nil
}

func (m *JobStateMachine) pause(ctx context.Context, job models.Job, notes string) (models.Job, error) {
	if job.Status != models.JobStatusInProgress {
		return models.Job{}, &models.IllegalTransitionError{Status: job.Status, Action: models.ActionPause}
	}

	// Pausing regresses to accepted with a note. StartedAt stays set.
	updated := m.apply(job.JobID, func(j *models.Job) {
		j.Status = models.JobStatusAccepted
		if notes != "" {
			j.Notes = notes
		}
		j.Confirmation = models.ConfirmationPending
	})

	m.confirm(ctx, job.JobID, models.ActionPause, func() error {
		return m.repo.ConfirmPause(ctx, job.JobID, notes)
	})

	return updated, nil
}

func (m *JobStateMachine) complete(ctx context.Context, job models.Job, notes string) (models.Job, error) {
	if job.Status != models.JobStatusInProgress {
		return models.Job{}, &models.IllegalTransitionError{Status: job.Status, Action: models.ActionComplete}
	}

	if granted, missing := m.gate.CanComplete(job.JobID); !granted {
		return models.Job{}, &models.ValidationUnmetError{Missing: missing}
	}

	now := m.now()
	timeSpent := 0.0
	if job.StartedAt != nil {
		timeSpent = now.Sub(*job.StartedAt).Hours()
	}

	updated := m.apply(job.JobID, func(j *models.Job) {
		j.Status = models.JobStatusCompleted
		if j.CompletedAt == nil {
			j.CompletedAt = &now
		}
		if notes != "" {
			j.Notes = notes
		}
		j.Confirmation = models.ConfirmationPending
	})

	m.confirm(ctx, job.JobID, models.ActionComplete, func() error {
		return m.repo.ConfirmComplete(ctx, job.JobID, timeSpent, notes)
	})

	return updated, nil
}

// apply mutates the job in the shared state and returns the updated copy.
func (m *JobStateMachine) apply(jobID string, mutate func(*models.Job)) models.Job {
	m.state.UpdateJob(jobID, mutate)
	job, _ := m.state.Job(jobID)
	return job
}

// confirm issues the remote confirmation for an already-applied transition.
// Local state stays authoritative on failure; the rejection is tagged and
// logged, nothing more.
func (m *JobStateMachine) confirm(ctx context.Context, jobID string, action models.TransitionAction, call func() error) {
	if err := call(); err != nil {
		m.logger.Warnf("Remote confirmation of %s for job %s failed, keeping local state: %v", action, jobID, err)
		m.state.UpdateJob(jobID, func(j *models.Job) {
			j.Confirmation = models.ConfirmationRejected
		})
		return
	}

	m.state.UpdateJob(jobID, func(j *models.Job) {
		j.Confirmation = models.ConfirmationConfirmed
	})
	m.logger.Infof("Job %s %s confirmed", jobID, action)
}
