package models

import "time"

// SyncOutcome records the result of one refresh of one endpoint.
type SyncOutcome struct {
	At           time.Time `json:"at"`
	OK           bool      `json:"ok"`
	FromSnapshot bool      `json:"fromSnapshot,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// SyncStatus is the coordinator's last-known outcome per endpoint, exposed
// for health reporting. Failures stay log-only for the technician.
type SyncStatus struct {
	StartedAt time.Time   `json:"startedAt"`
	Jobs      SyncOutcome `json:"jobs"`
	Stats     SyncOutcome `json:"stats"`
	Clock     SyncOutcome `json:"clock"`
}
