package models

import "time"

type JobStatus string

const (
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
)

type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityHigh   JobPriority = "high"
	JobPriorityUrgent JobPriority = "urgent"
)

// Rank returns the ordinal position of a priority. Priority is advisory
// only and never affects transition legality.
func (p JobPriority) Rank() int {
	switch p {
	case JobPriorityLow:
		return 0
	case JobPriorityMedium:
		return 1
	case JobPriorityHigh:
		return 2
	case JobPriorityUrgent:
		return 3
	default:
		return -1
	}
}

// ConfirmationState tags a locally applied status against the remote source
// of truth. A rejected confirmation is never rolled back locally; the next
// successful sync overwrites it.
type ConfirmationState string

const (
	ConfirmationConfirmed ConfirmationState = "confirmed"
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationRejected  ConfirmationState = "rejected"
)

type TransitionAction string

const (
	ActionAccept   TransitionAction = "accept"
	ActionStart    TransitionAction = "start"
	ActionPause    TransitionAction = "pause"
	ActionComplete TransitionAction = "complete"
)

// Location is a device location fix.
type Location struct {
	Latitude   float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude  float64   `json:"longitude" validate:"required,min=-180,max=180"`
	AccuracyM  float64   `json:"accuracyM,omitempty"`
	CapturedAt time.Time `json:"capturedAt,omitempty"`
}

type Appointment struct {
	ScheduledAt   time.Time `json:"scheduledAt"`
	WindowMinutes int       `json:"windowMinutes,omitempty"`
}

// Job is one unit of field work, hydrated from the remote source on sync and
// mutated only through state machine transitions.
type Job struct {
	JobID        string            `json:"jobID" validate:"required"`
	TechnicianID string            `json:"technicianID" validate:"required"`
	ClientName   string            `json:"clientName,omitempty"`
	ClientPhone  string            `json:"clientPhone,omitempty"`
	Address      string            `json:"address,omitempty"`
	Appointment  *Appointment      `json:"appointment,omitempty"`
	Priority     JobPriority       `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Status       JobStatus         `json:"status" validate:"required,oneof=assigned accepted in_progress completed"`
	Confirmation ConfirmationState `json:"confirmation,omitempty"`
	Notes        string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt    time.Time         `json:"createdAt"`
	AcceptedAt   *time.Time        `json:"acceptedAt,omitempty"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

// Active reports whether the job still belongs in the technician's working
// view. Completed jobs stay readable in the finished list.
func (j *Job) Active() bool {
	return j.Status != JobStatusCompleted
}

// JobStats is the per-status job count aggregate for one technician.
type JobStats struct {
	Assigned   int `json:"assigned"`
	Accepted   int `json:"accepted"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

func (s JobStats) Total() int {
	return s.Assigned + s.Accepted + s.InProgress + s.Completed
}

func (s JobStats) IsZero() bool {
	return s.Total() == 0
}

// ComputeJobStats rebuilds the aggregate from a job set.
func ComputeJobStats(jobs []*Job) JobStats {
	var stats JobStats
	for _, j := range jobs {
		switch j.Status {
		case JobStatusAssigned:
			stats.Assigned++
		case JobStatusAccepted:
			stats.Accepted++
		case JobStatusInProgress:
			stats.InProgress++
		case JobStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

// ClockRecord holds one technician's accumulated working hours and distance
// for a calendar day. The remote source owns it; Estimated marks a local
// fallback derived from a recorded clock-in instant.
type ClockRecord struct {
	TechnicianID string    `json:"technicianID"`
	Date         string    `json:"date"` // 2006-01-02
	HoursWorked  float64   `json:"hoursWorked"`
	DistanceKM   float64   `json:"distanceKM"`
	Estimated    bool      `json:"estimated,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}
