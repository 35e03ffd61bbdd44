package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotJobOwner rejects transition attempts from a technician who does not
// own the job.
var ErrNotJobOwner = errors.New("job is not assigned to this technician")

// ErrJobNotFound reports a job ID absent from the synced view.
var ErrJobNotFound = errors.New("job not found")

// IllegalTransitionError rejects a (status, action) pair that is not part of
// the job lifecycle. No mutation happens when it is returned.
type IllegalTransitionError struct {
	Status JobStatus
	Action TransitionAction
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: cannot %s a job in status %q", e.Action, e.Status)
}

// PreconditionMissingError rejects an action whose hard precondition is not
// met, e.g. starting a job without a location fix. The action is refused,
// never queued.
type PreconditionMissingError struct {
	Missing string
}

func (e *PreconditionMissingError) Error() string {
	return fmt.Sprintf("precondition missing: %s", e.Missing)
}

// SyncFailureKind classifies a failed remote read.
type SyncFailureKind string

const (
	SyncFailureTimeout   SyncFailureKind = "timeout"
	SyncFailureNetwork   SyncFailureKind = "network"
	SyncFailureMalformed SyncFailureKind = "malformed"
	SyncFailureRemote    SyncFailureKind = "remote_status"
)

// SyncFailureError wraps any failure of a remote refresh call. Callers
// recover by falling back to cached data; it never surfaces as a hard error.
type SyncFailureError struct {
	Kind     SyncFailureKind
	Endpoint string
	Err      error
}

func (e *SyncFailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sync failure (%s) on %s: %v", e.Kind, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("sync failure (%s) on %s", e.Kind, e.Endpoint)
}

func (e *SyncFailureError) Unwrap() error {
	return e.Err
}

// ValidationUnmetError carries the ordered, user-facing list of exactly what
// is missing from an item, checklist, or sign-off.
type ValidationUnmetError struct {
	Missing []string
}

func (e *ValidationUnmetError) Error() string {
	return "validation unmet: " + strings.Join(e.Missing, "; ")
}

// RemoteRejectionError reports a non-success response to a write. Transition
// confirmations log it without rolling back the local optimistic state.
type RemoteRejectionError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("remote rejected %s (%d): %s", e.Endpoint, e.Code, e.Message)
}
