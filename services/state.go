package services

import (
	"fieldops-client/models"
	"sync"
	"time"
)

// TechnicianState is the in-memory view of one technician's synced data.
// The sync coordinator replaces slices wholesale on successful refreshes;
// the state machine mutates individual jobs; controllers read snapshots.
// Each of the three slices (jobs, stats, clock) updates independently, so a
// partially completed sync cycle is safe.
type TechnicianState struct {
	mu    sync.RWMutex
	jobs  map[string]*models.Job
	order []string
	stats models.JobStats
	clock models.ClockRecord

	statsAt time.Time
	clockAt time.Time
}

func NewTechnicianState() *TechnicianState {
	return &TechnicianState{
		jobs: make(map[string]*models.Job),
	}
}

// ReplaceJobs swaps in a fresh job list from the remote source. Metadata is
// refreshed wholesale, not merged field by field.
func (s *TechnicianState) ReplaceJobs(jobs []*models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = make(map[string]*models.Job, len(jobs))
	s.order = make([]string, 0, len(jobs))
	for _, j := range jobs {
		copied := *j
		s.jobs[j.JobID] = &copied
		s.order = append(s.order, j.JobID)
	}
}

// Job returns a copy of one job.
func (s *TechnicianState) Job(jobID string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, false
	}
	return *j, true
}

// UpdateJob applies a mutation to one job under the state lock.
func (s *TechnicianState) UpdateJob(jobID string, mutate func(*models.Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return false
	}
	mutate(j)
	return true
}

// ActiveJobs returns the jobs still in the technician's working view.
func (s *TechnicianState) ActiveJobs() []*models.Job {
	return s.filterJobs(func(j *models.Job) bool { return j.Active() })
}

// CompletedJobs returns the "tech finished" view.
func (s *TechnicianState) CompletedJobs() []*models.Job {
	return s.filterJobs(func(j *models.Job) bool { return !j.Active() })
}

// AllJobs returns every synced job in sync order.
func (s *TechnicianState) AllJobs() []*models.Job {
	return s.filterJobs(func(*models.Job) bool { return true })
}

func (s *TechnicianState) filterJobs(keep func(*models.Job) bool) []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Job, 0, len(s.order))
	for _, id := range s.order {
		if j, ok := s.jobs[id]; ok && keep(j) {
			copied := *j
			out = append(out, &copied)
		}
	}
	return out
}

// SetStats replaces the aggregate counts. at is the capture timestamp of the
// data (fresh fetch or cache fallback).
func (s *TechnicianState) SetStats(stats models.JobStats, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.statsAt = at
}

// Stats returns the current counts and their capture timestamp.
func (s *TechnicianState) Stats() (models.JobStats, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.statsAt
}

// SetClock replaces the clock view.
func (s *TechnicianState) SetClock(record models.ClockRecord, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = record
	s.clockAt = at
}

// Clock returns the current clock view and its capture timestamp.
func (s *TechnicianState) Clock() (models.ClockRecord, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock, s.clockAt
}

// LocationTracker holds the most recent device location fix. Starting a job
// requires one; with no fix present the action is refused, not queued.
type LocationTracker struct {
	mu      sync.RWMutex
	current *models.Location
}

func NewLocationTracker() *LocationTracker {
	return &LocationTracker{}
}

// Update records a fresh fix.
func (t *LocationTracker) Update(loc models.Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := loc
	t.current = &copied
}

// CurrentLocation returns the latest fix, if any.
func (t *LocationTracker) CurrentLocation() (models.Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return models.Location{}, false
	}
	return *t.current, true
}

// ClearLocation drops the fix (e.g. the device lost GPS).
func (t *LocationTracker) ClearLocation() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = nil
}
