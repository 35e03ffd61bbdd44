package worker

import (
	"context"
	"fieldops-client/cache"
	"fieldops-client/models"
	"fieldops-client/repository"
	"fieldops-client/services"
	"fieldops-client/utils"
	"fieldops-client/utils/logger"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
)

// SyncCoordinator keeps the technician's job list, stats and clock record
// eventually consistent with the remote source. It polls on fixed intervals
// with no backoff: a failed refresh is logged, the last good data stays
// visible, and the next tick tries again.
type SyncCoordinator struct {
	config       *models.Config
	logger       logger.Logger
	repo         repository.JobRepositoryInterface
	state        *services.TechnicianState
	snapshots    *cache.SnapshotCache
	technicianID string
	now          func() time.Time

	cronJob *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	isRunning bool
	status    models.SyncStatus
}

func NewSyncCoordinator(
	cfg *models.Config,
	repo repository.JobRepositoryInterface,
	state *services.TechnicianState,
	snapshots *cache.SnapshotCache,
	technicianID string,
	log logger.Logger,
) (*SyncCoordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SyncCoordinator{
		config:       cfg,
		logger:       log,
		repo:         repo,
		state:        state,
		snapshots:    snapshots,
		technicianID: technicianID,
		now:          time.Now,
		cronJob:      cron.New(),
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start schedules the polls and runs one immediate refresh of everything.
func (s *SyncCoordinator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("sync coordinator is already running")
	}

	jobSpec := cronSpecForSeconds(s.config.JobPollSeconds)
	statsSpec := cronSpecForSeconds(s.config.StatsPollSeconds)

	if err := s.cronJob.AddFunc(jobSpec, s.refreshJobsTick); err != nil {
		return fmt.Errorf("failed to schedule job poll: %w", err)
	}
	if err := s.cronJob.AddFunc(statsSpec, s.refreshAggregatesTick); err != nil {
		return fmt.Errorf("failed to schedule stats/clock poll: %w", err)
	}

	s.status.StartedAt = s.now()
	s.cronJob.Start()
	s.isRunning = true

	s.logger.Infof("Sync coordinator started (jobs %q, stats/clock %q)", jobSpec, statsSpec)

	// First refresh happens right away, off the scheduler.
	go func() {
		s.refreshJobsTick()
		s.refreshAggregatesTick()
	}()

	return nil
}

// Stop halts the schedules and cancels any in-flight refresh.
func (s *SyncCoordinator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancel()
	s.cronJob.Stop()
	s.isRunning = false
	s.logger.Info("Sync coordinator stopped")
}

// IsRunning reports whether the schedules are active.
func (s *SyncCoordinator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Status returns the last outcome per endpoint.
func (s *SyncCoordinator) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MarkClockIn records the local clock-in instant used for the clock fallback
// estimate when the remote record is unreachable.
func (s *SyncCoordinator) MarkClockIn() error {
	now := s.now()
	return s.snapshots.Set(s.clockInKey(), now, now)
}

func (s *SyncCoordinator) refreshJobsTick() {
	select {
	case <-s.ctx.Done():
		return
	default:
	}
	s.RefreshJobs(s.ctx)
}

func (s *SyncCoordinator) refreshAggregatesTick() {
	select {
	case <-s.ctx.Done():
		return
	default:
	}
	// Stats and clock are independent slices of state; either may land
	// without the other.
	s.RefreshStats(s.ctx)
	s.RefreshClock(s.ctx)
}

// RefreshJobs replaces the in-memory job list wholesale. A failed call
// leaves the previous list untouched; there is no snapshot fallback for the
// job list.
func (s *SyncCoordinator) RefreshJobs(ctx context.Context) {
	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		s.logger.Warnf("Job list refresh failed, keeping previous view: %v", err)
		s.recordOutcome(&s.status.Jobs, false, false, err)
		return
	}

	s.state.ReplaceJobs(jobs)

	// The aggregate is recomputable from the job set, so every successful
	// job sync refreshes it too.
	now := s.now()
	stats := models.ComputeJobStats(jobs)
	s.state.SetStats(stats, now)
	if err := s.snapshots.Set(s.statsKey(), stats, now); err != nil {
		s.logger.Warnf("Failed to snapshot recomputed stats: %v", err)
	}

	s.recordOutcome(&s.status.Jobs, true, false, nil)
	s.logger.Debugf("Job list refreshed: %d jobs", len(jobs))
}

// RefreshStats replaces the aggregate counts. On failure the freshest
// snapshot is restored, regardless of its age, so the visible counts never
// regress to zeros during an outage.
func (s *SyncCoordinator) RefreshStats(ctx context.Context) {
	stats, err := s.repo.GetStats(ctx)
	if err == nil {
		now := s.now()
		s.state.SetStats(*stats, now)
		if err := s.snapshots.Set(s.statsKey(), *stats, now); err != nil {
			s.logger.Warnf("Failed to snapshot stats: %v", err)
		}
		s.recordOutcome(&s.status.Stats, true, false, nil)
		return
	}

	s.logger.Warnf("Stats refresh failed: %v", err)

	var cached models.JobStats
	capturedAt, ok, cacheErr := s.snapshots.Get(s.statsKey(), &cached)
	if cacheErr != nil || !ok {
		s.recordOutcome(&s.status.Stats, false, false, err)
		return
	}

	s.state.SetStats(cached, capturedAt)
	s.recordOutcome(&s.status.Stats, false, true, err)
	s.logger.Debugf("Stats restored from snapshot captured at %s", capturedAt)
}

// RefreshClock replaces the clock view. Fallback order on failure: the
// freshest snapshot, then an estimate from the locally recorded clock-in
// instant.
func (s *SyncCoordinator) RefreshClock(ctx context.Context) {
	now := s.now()
	date := utils.DateKey(now)

	record, err := s.repo.GetClock(ctx, date)
	if err == nil {
		s.state.SetClock(*record, now)
		if err := s.snapshots.Set(s.clockKey(date), *record, now); err != nil {
			s.logger.Warnf("Failed to snapshot clock record: %v", err)
		}
		s.recordOutcome(&s.status.Clock, true, false, nil)
		return
	}

	s.logger.Warnf("Clock refresh failed: %v", err)

	var cached models.ClockRecord
	capturedAt, ok, cacheErr := s.snapshots.Get(s.clockKey(date), &cached)
	if cacheErr == nil && ok {
		s.state.SetClock(cached, capturedAt)
		s.recordOutcome(&s.status.Clock, false, true, err)
		return
	}

	var clockIn time.Time
	if _, ok, _ := s.snapshots.Get(s.clockInKey(), &clockIn); ok && utils.DateKey(clockIn) == date {
		estimate := models.ClockRecord{
			TechnicianID: s.technicianID,
			Date:         date,
			HoursWorked:  now.Sub(clockIn).Hours(),
			Estimated:    true,
			UpdatedAt:    now,
		}
		s.state.SetClock(estimate, now)
		s.recordOutcome(&s.status.Clock, false, true, err)
		return
	}

	s.recordOutcome(&s.status.Clock, false, false, err)
}

func (s *SyncCoordinator) recordOutcome(slot *models.SyncOutcome, ok, fromSnapshot bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := models.SyncOutcome{At: s.now(), OK: ok, FromSnapshot: fromSnapshot}
	if err != nil {
		outcome.Error = err.Error()
	}
	*slot = outcome
}

func (s *SyncCoordinator) statsKey() string {
	return "stats/" + s.technicianID
}

func (s *SyncCoordinator) clockKey(date string) string {
	return "clock/" + s.technicianID + "/" + date
}

func (s *SyncCoordinator) clockInKey() string {
	return "clockin/" + s.technicianID
}

// cronSpecForSeconds builds a second-precision schedule for an interval.
// Intervals of a minute or more land on minute boundaries.
func cronSpecForSeconds(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("*/%d * * * * *", seconds)
	}
	minutes := seconds / 60
	if minutes <= 1 {
		return "0 * * * * *"
	}
	return fmt.Sprintf("0 */%d * * * *", minutes)
}
