package services

import (
	"context"
	"fieldops-client/models"
	"fieldops-client/utils/logger"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CameraDevice is the narrow interface to the device media capability. The
// capability itself is external; this client only orchestrates sessions.
type CameraDevice interface {
	Acquire(ctx context.Context) (CameraStream, error)
}

// CameraStream is one acquired media stream.
type CameraStream interface {
	CaptureFrame(ctx context.Context) (models.ImageRef, error)
	// RecordClip records until the stream stops it or maxDuration elapses
	// (auto-stop).
	RecordClip(ctx context.Context, maxDuration time.Duration) (models.VideoRef, error)
	Release() error
}

// CaptureManager enforces the single-stream policy: the device camera is a
// singleton, so starting a new capture session first releases whatever
// stream is still active.
type CaptureManager struct {
	device  CameraDevice
	maxClip time.Duration
	logger  logger.Logger

	mu     sync.Mutex
	active CameraStream
}

func NewCaptureManager(device CameraDevice, maxClip time.Duration, log logger.Logger) *CaptureManager {
	return &CaptureManager{
		device:  device,
		maxClip: maxClip,
		logger:  log,
	}
}

// CaptureImage grabs one frame from a fresh session.
func (m *CaptureManager) CaptureImage(ctx context.Context) (models.ImageRef, error) {
	stream, err := m.startSession(ctx)
	if err != nil {
		return models.ImageRef{}, err
	}
	return stream.CaptureFrame(ctx)
}

// RecordVideo records one clip, auto-stopping at the configured maximum.
func (m *CaptureManager) RecordVideo(ctx context.Context) (models.VideoRef, error) {
	stream, err := m.startSession(ctx)
	if err != nil {
		return models.VideoRef{}, err
	}
	return stream.RecordClip(ctx, m.maxClip)
}

// EndSession releases the active stream, if any.
func (m *CaptureManager) EndSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

func (m *CaptureManager) startSession(ctx context.Context) (CameraStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()

	stream, err := m.device.Acquire(ctx)
	if err != nil {
		return nil, &models.PreconditionMissingError{Missing: "camera access"}
	}
	m.active = stream
	return stream, nil
}

func (m *CaptureManager) releaseLocked() {
	if m.active == nil {
		return
	}
	if err := m.active.Release(); err != nil {
		m.logger.Warnf("Failed to release previous camera stream: %v", err)
	}
	m.active = nil
}

// SimulatedCamera is the built-in CameraDevice used when no real device
// integration is wired in. It fabricates capture references so the rest of
// the pipeline behaves exactly as it would on a device.
type SimulatedCamera struct {
	now func() time.Time
}

func NewSimulatedCamera() *SimulatedCamera {
	return &SimulatedCamera{now: time.Now}
}

func (c *SimulatedCamera) Acquire(context.Context) (CameraStream, error) {
	return &simulatedStream{now: c.now}, nil
}

type simulatedStream struct {
	now      func() time.Time
	released bool
}

func (s *simulatedStream) CaptureFrame(context.Context) (models.ImageRef, error) {
	return models.ImageRef{
		ImageID:    uuid.New().String(),
		CapturedAt: s.now(),
	}, nil
}

func (s *simulatedStream) RecordClip(_ context.Context, maxDuration time.Duration) (models.VideoRef, error) {
	return models.VideoRef{
		VideoID:         uuid.New().String(),
		DurationSeconds: maxDuration.Seconds(),
		CapturedAt:      s.now(),
	}, nil
}

func (s *simulatedStream) Release() error {
	s.released = true
	return nil
}
