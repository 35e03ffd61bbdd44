package worker

import (
	"fieldops-client/cache"
	"fieldops-client/models"
	"fieldops-client/repository"
	"fieldops-client/services"
	"fieldops-client/utils/logger"
	"fmt"
)

// Service wraps the sync coordinator for easy integration
type Service struct {
	coordinator *SyncCoordinator
	logger      logger.Logger
}

// NewService creates a new sync service
func NewService(
	cfg *models.Config,
	repo repository.JobRepositoryInterface,
	state *services.TechnicianState,
	snapshots *cache.SnapshotCache,
	technicianID string,
	log logger.Logger,
) (*Service, error) {
	coordinator, err := NewSyncCoordinator(cfg, repo, state, snapshots, technicianID, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync coordinator: %w", err)
	}

	return &Service{
		coordinator: coordinator,
		logger:      log,
	}, nil
}

// StartInBackground starts the sync coordinator
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting sync service in background")
	return s.coordinator.Start()
}

// Stop stops the sync coordinator
func (s *Service) Stop() {
	s.logger.Info("Stopping sync service")
	s.coordinator.Stop()
}

// IsRunning reports whether the coordinator is polling
func (s *Service) IsRunning() bool {
	return s.coordinator.IsRunning()
}

// Status returns the last refresh outcome per endpoint
func (s *Service) Status() models.SyncStatus {
	return s.coordinator.Status()
}

// MarkClockIn records the local clock-in instant
func (s *Service) MarkClockIn() error {
	return s.coordinator.MarkClockIn()
}

// GetHealthStatus returns a health summary for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	status := s.coordinator.Status()

	return map[string]interface{}{
		"running":       s.coordinator.IsRunning(),
		"started_at":    status.StartedAt,
		"jobs_ok":       status.Jobs.OK,
		"jobs_at":       status.Jobs.At,
		"stats_ok":      status.Stats.OK,
		"stats_at":      status.Stats.At,
		"clock_ok":      status.Clock.OK,
		"clock_at":      status.Clock.At,
		"from_snapshot": status.Stats.FromSnapshot || status.Clock.FromSnapshot,
	}
}
