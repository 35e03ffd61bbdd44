package services

import (
	"context"
	"errors"
	"fieldops-client/models"
	"fieldops-client/repository"
	"fieldops-client/utils/logger"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gate messages, in evaluation order.
const (
	msgUDFIncomplete  = "UDF data is incomplete"
	msgStockUnsettled = "confirm stock used or mark the job as no stock used"
	msgNoGalleryImage = "capture at least one job image"
	msgNoSignature    = "capture the customer signature"
	msgTermsUnchecked = "accept the terms and conditions"
)

// GallerySource supplies the images captured for a job outside the sign-off
// screen itself (inspection items, location images).
type GallerySource interface {
	ChecklistImages(jobID string) []models.ImageRef
}

// TransitionAttempter is the slice of the state machine the aggregator
// drives on completion.
type TransitionAttempter interface {
	AttemptTransition(ctx context.Context, jobID string, action models.TransitionAction, technicianID, notes string) (models.Job, error)
}

// SignOffAggregator composes the five independent completion gates — UDF
// completeness, stock confirmation, gallery imagery, signature, terms — into
// the one decision that lets a job complete.
type SignOffAggregator struct {
	state        *TechnicianState
	repo         repository.JobRepositoryInterface
	gallery      GallerySource
	capture      *CaptureManager
	logger       logger.Logger
	technicianID string
	now          func() time.Time

	mu      sync.Mutex
	records map[string]*models.SignOffRecord
	machine TransitionAttempter
}

func NewSignOffAggregator(
	state *TechnicianState,
	repo repository.JobRepositoryInterface,
	gallery GallerySource,
	capture *CaptureManager,
	technicianID string,
	log logger.Logger,
) *SignOffAggregator {
	return &SignOffAggregator{
		state:        state,
		repo:         repo,
		gallery:      gallery,
		capture:      capture,
		logger:       log,
		technicianID: technicianID,
		now:          time.Now,
		records:      make(map[string]*models.SignOffRecord),
	}
}

// AttachStateMachine wires the machine in after construction; the machine
// itself holds this aggregator as its completion gate.
func (a *SignOffAggregator) AttachStateMachine(machine TransitionAttempter) {
	a.machine = machine
}

// Open creates or reopens the sign-off session for a job. The job must be in
// progress or later. Reopening keeps the work in progress but clears the
// signature: signature evidence is session-scoped and must be recreated.
func (a *SignOffAggregator) Open(jobID string) (*models.SignOffRecord, error) {
	job, ok := a.state.Job(jobID)
	if !ok {
		return nil, models.ErrJobNotFound
	}
	if job.Status != models.JobStatusInProgress && job.Status != models.JobStatusCompleted {
		return nil, &models.IllegalTransitionError{Status: job.Status, Action: "sign-off"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.records[jobID]; ok {
		if existing.CompletedAt != nil {
			return nil, fmt.Errorf("sign-off for job %s is already completed and no longer editable", jobID)
		}
		existing.SignatureImage = ""
		existing.OpenedAt = a.now()
		copied := *existing
		return &copied, nil
	}

	record := &models.SignOffRecord{
		SignOffID:    uuid.New().String(),
		JobID:        jobID,
		TechnicianID: a.technicianID,
		OpenedAt:     a.now(),
	}
	a.records[jobID] = record
	copied := *record
	return &copied, nil
}

// Record returns a copy of the open record.
func (a *SignOffAggregator) Record(jobID string) (*models.SignOffRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	record, err := a.openRecord(jobID)
	if err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

// SetSignature stores the captured signature image for this session.
func (a *SignOffAggregator) SetSignature(jobID, signature string) error {
	return a.update(jobID, func(r *models.SignOffRecord) error {
		if signature == "" {
			return errors.New("signature cannot be empty")
		}
		r.SignatureImage = signature
		return nil
	})
}

// SetTerms records the terms-acceptance checkbox.
func (a *SignOffAggregator) SetTerms(jobID string, accepted bool) error {
	return a.update(jobID, func(r *models.SignOffRecord) error {
		r.TermsAccepted = accepted
		return nil
	})
}

// SetUDFComplete records the externally sourced UDF completeness flag.
func (a *SignOffAggregator) SetUDFComplete(jobID string, complete bool) error {
	return a.update(jobID, func(r *models.SignOffRecord) error {
		r.UDFComplete = complete
		return nil
	})
}

// SetStock settles stock usage one way or the other: a usage record, or an
// explicit no-stock declaration. Declaring both at once is contradictory.
func (a *SignOffAggregator) SetStock(jobID string, used []models.StockUsage, noStockUsed bool) error {
	return a.update(jobID, func(r *models.SignOffRecord) error {
		if len(used) > 0 && noStockUsed {
			return errors.New("cannot record stock usage and declare no stock used")
		}
		r.StockUsed = used
		r.NoStockUsed = noStockUsed
		return nil
	})
}

// AddGalleryImage captures one image straight into the job gallery.
func (a *SignOffAggregator) AddGalleryImage(ctx context.Context, jobID string) (models.ImageRef, error) {
	img, err := a.capture.CaptureImage(ctx)
	if err != nil {
		return models.ImageRef{}, err
	}

	if err := a.update(jobID, func(r *models.SignOffRecord) error {
		r.GalleryImages = append(r.GalleryImages, img)
		return nil
	}); err != nil {
		return models.ImageRef{}, err
	}
	return img, nil
}

// CanComplete evaluates all five gates independently and returns the ordered
// list of unmet conditions.
func (a *SignOffAggregator) CanComplete(jobID string) (bool, []string) {
	a.mu.Lock()
	record, ok := a.records[jobID]
	if !ok {
		a.mu.Unlock()
		return false, []string{"sign-off has not been opened for this job"}
	}
	copied := *record
	a.mu.Unlock()

	var missing []string

	if !copied.UDFComplete {
		missing = append(missing, msgUDFIncomplete)
	}
	if !copied.StockConfirmed() {
		missing = append(missing, msgStockUnsettled)
	}
	if a.galleryCount(jobID, &copied) == 0 {
		missing = append(missing, msgNoGalleryImage)
	}
	if copied.SignatureImage == "" {
		missing = append(missing, msgNoSignature)
	}
	if !copied.TermsAccepted {
		missing = append(missing, msgTermsUnchecked)
	}

	return len(missing) == 0, missing
}

// Save persists the work-in-progress sign-off. No gate applies here.
func (a *SignOffAggregator) Save(ctx context.Context, jobID string) error {
	a.mu.Lock()
	record, err := a.openRecord(jobID)
	if err != nil {
		a.mu.Unlock()
		return err
	}
	saved := a.now()
	record.SavedAt = &saved
	copied := *record
	a.mu.Unlock()

	if err := a.repo.SaveSignOff(ctx, &copied); err != nil {
		a.logger.Warnf("Failed to save sign-off for job %s: %v", jobID, err)
		return err
	}
	a.logger.Infof("Sign-off for job %s saved", jobID)
	return nil
}

// Complete re-runs every gate, submits the final record, and drives the job
// to completed through the state machine.
func (a *SignOffAggregator) Complete(ctx context.Context, jobID, notes string) (models.Job, error) {
	if granted, missing := a.CanComplete(jobID); !granted {
		return models.Job{}, &models.ValidationUnmetError{Missing: missing}
	}

	a.mu.Lock()
	record := a.records[jobID]
	completed := a.now()
	record.CompletedAt = &completed
	copied := *record
	a.mu.Unlock()

	if err := a.repo.SaveSignOff(ctx, &copied); err != nil {
		// The final submission rides the same remote path as everything
		// else: a failure is logged and the completion proceeds locally.
		a.logger.Warnf("Failed to submit final sign-off for job %s: %v", jobID, err)
	}

	job, err := a.machine.AttemptTransition(ctx, jobID, models.ActionComplete, a.technicianID, notes)
	if err != nil {
		// Roll the completion stamp back so the record stays editable.
		a.mu.Lock()
		record.CompletedAt = nil
		a.mu.Unlock()
		return models.Job{}, err
	}

	return job, nil
}

func (a *SignOffAggregator) galleryCount(jobID string, record *models.SignOffRecord) int {
	count := len(record.GalleryImages)
	if a.gallery != nil {
		count += len(a.gallery.ChecklistImages(jobID))
	}
	return count
}

// openRecord returns the editable record for a job. Caller holds the lock.
func (a *SignOffAggregator) openRecord(jobID string) (*models.SignOffRecord, error) {
	record, ok := a.records[jobID]
	if !ok {
		return nil, fmt.Errorf("sign-off has not been opened for job %s", jobID)
	}
	if record.CompletedAt != nil {
		return nil, fmt.Errorf("sign-off for job %s is already completed and no longer editable", jobID)
	}
	return record, nil
}

func (a *SignOffAggregator) update(jobID string, mutate func(*models.SignOffRecord) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	record, err := a.openRecord(jobID)
	if err != nil {
		return err
	}
	return mutate(record)
}
