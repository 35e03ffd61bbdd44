package services

import (
	"context"
	"errors"
	"fieldops-client/models"
	"fieldops-client/utils/logger"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// checklistTemplates are the built-in fleet/safety inspections. Item IDs in
// the engine's unconditional allow-list must match IDs declared here.
var checklistTemplates = map[string]func() *models.Checklist{
	"vehicle_inspection": vehicleInspectionTemplate,
	"safety_inspection":  safetyInspectionTemplate,
}

func vehicleInspectionTemplate() *models.Checklist {
	return &models.Checklist{
		Template:           "vehicle_inspection",
		Name:               "Vehicle Inspection",
		NeedsLocationImage: true,
		Items: []*models.InspectionItem{
			{
				ItemID:   "vi_drivers_license",
				Name:     "Driver's License",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Valid", "Expired", "Stolen", "Don't Have"}},
					{Kind: models.CaptureImage, ImageCount: 1},
					{Kind: models.CaptureExpiry},
				},
			},
			{
				ItemID:   "vi_registration",
				Name:     "Vehicle Registration",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Valid", "Expired", "Stolen", "Don't Have"}},
					{Kind: models.CaptureImage, ImageCount: 1},
				},
			},
			{
				ItemID:   "vi_tires",
				Name:     "Tires",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Good", "Worn", "Needs Replacement"}},
					{Kind: models.CaptureImage, ImageCount: 2},
				},
			},
			{
				ItemID:   "vi_walkaround",
				Name:     "Walkaround Video",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureVideo},
				},
			},
			{
				ItemID:   "vi_interior",
				Name:     "Cab Interior",
				Required: false,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Clean", "Needs Cleaning"}},
					{Kind: models.CaptureImage, ImageCount: 1},
				},
			},
		},
	}
}

func safetyInspectionTemplate() *models.Checklist {
	return &models.Checklist{
		Template:          "safety_inspection",
		Name:              "Safety Equipment Inspection",
		NeedsSerialNumber: true,
		Items: []*models.InspectionItem{
			{
				ItemID:   "si_fire_extinguisher",
				Name:     "Fire Extinguisher",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Charged", "Low Pressure", "Stolen", "Don't Have"}},
					{Kind: models.CaptureExpiry},
					{Kind: models.CaptureImage, ImageCount: 1},
				},
			},
			{
				ItemID:   "si_harness",
				Name:     "Safety Harness",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Good", "Frayed", "Stolen", "Don't Have"}},
					{Kind: models.CaptureSerial},
					{Kind: models.CaptureImage, ImageCount: 1},
				},
			},
			{
				ItemID:   "si_id_badge",
				Name:     "Site ID Badge",
				Required: true,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Valid", "Expired", "Stolen", "Don't Have"}},
					{Kind: models.CaptureImage, ImageCount: 1},
				},
			},
			{
				ItemID:   "si_first_aid",
				Name:     "First Aid Kit",
				Required: false,
				Requirements: []models.CaptureRequirement{
					{Kind: models.CaptureCondition, Options: []string{"Stocked", "Missing Items"}},
				},
			},
		},
	}
}

// CompletionState is the checklist summary exposed to the surrounding UI.
type CompletionState struct {
	Status      models.ChecklistStatus `json:"status"`
	CanComplete bool                   `json:"canComplete"`
	Missing     []string               `json:"missing,omitempty"`
}

// ItemProgress is the per-item gating summary.
type ItemProgress struct {
	CanResolve    bool     `json:"canResolve"`
	Missing       []string `json:"missing,omitempty"`
	ImagesCurrent int      `json:"imagesCurrent"`
	ImagesMax     int      `json:"imagesMax"`
	CaptureOpen   bool     `json:"captureOpen"`
}

// InspectionService holds the open checklist sessions for the technician's
// jobs and routes evidence captures into items and checklist-level slots.
type InspectionService struct {
	engine  *ValidationEngine
	capture *CaptureManager
	logger  logger.Logger
	now     func() time.Time

	mu         sync.RWMutex
	checklists map[string]*models.Checklist
}

func NewInspectionService(engine *ValidationEngine, capture *CaptureManager, log logger.Logger) *InspectionService {
	return &InspectionService{
		engine:     engine,
		capture:    capture,
		logger:     log,
		now:        time.Now,
		checklists: make(map[string]*models.Checklist),
	}
}

// OpenChecklist instantiates a template for a job.
func (s *InspectionService) OpenChecklist(jobID, template string) (*models.Checklist, error) {
	build, ok := checklistTemplates[template]
	if !ok {
		return nil, fmt.Errorf("unknown checklist template %q", template)
	}

	cl := build()
	cl.ChecklistID = uuid.New().String()
	cl.JobID = jobID
	cl.OpenedAt = s.now()
	for _, item := range cl.Items {
		item.Resolution = models.ResolutionUnresolved
	}

	s.mu.Lock()
	s.checklists[cl.ChecklistID] = cl
	s.mu.Unlock()

	s.logger.Infof("Opened %s checklist %s for job %s", template, cl.ChecklistID, jobID)
	return s.snapshot(cl), nil
}

// Checklist returns a copy of one open checklist.
func (s *InspectionService) Checklist(checklistID string) (*models.Checklist, error) {
	cl, err := s.find(checklistID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(cl), nil
}

// AddItemImage captures one image into an item, bounded by the item's
// declared count. Once the count is reached the capture control is closed.
func (s *InspectionService) AddItemImage(ctx context.Context, checklistID, itemID string) (models.ImageRef, ItemProgress, error) {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return models.ImageRef{}, ItemProgress{}, err
	}

	if !item.Requires(models.CaptureImage) {
		return models.ImageRef{}, ItemProgress{}, fmt.Errorf("item %s takes no images", itemID)
	}

	s.mu.Lock()
	bound := item.ImageBound()
	if len(item.Images) >= bound {
		s.mu.Unlock()
		return models.ImageRef{}, s.progress(item), fmt.Errorf("item %s already holds %d of %d images", itemID, len(item.Images), bound)
	}
	s.mu.Unlock()

	img, err := s.capture.CaptureImage(ctx)
	if err != nil {
		return models.ImageRef{}, ItemProgress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.Images = append(item.Images, img)
	return img, s.progress(item), nil
}

// RecordItemVideo records the single clip an item can hold.
func (s *InspectionService) RecordItemVideo(ctx context.Context, checklistID, itemID string) (models.VideoRef, error) {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return models.VideoRef{}, err
	}

	if !item.Requires(models.CaptureVideo) {
		return models.VideoRef{}, fmt.Errorf("item %s takes no video", itemID)
	}

	s.mu.RLock()
	hasVideo := item.Video != nil
	s.mu.RUnlock()
	if hasVideo {
		return models.VideoRef{}, fmt.Errorf("item %s already holds its video", itemID)
	}

	vid, err := s.capture.RecordVideo(ctx)
	if err != nil {
		return models.VideoRef{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.Video = &vid
	return vid, nil
}

// SetItemCondition selects the item condition from its option list.
func (s *InspectionService) SetItemCondition(checklistID, itemID, condition string) error {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return err
	}

	req, ok := item.Requirement(models.CaptureCondition)
	if !ok {
		return fmt.Errorf("item %s takes no condition", itemID)
	}

	valid := false
	for _, opt := range req.Options {
		if opt == condition {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("condition %q is not an option for item %s", condition, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.Condition = condition
	return nil
}

// SetItemExpiry records the item expiry date.
func (s *InspectionService) SetItemExpiry(checklistID, itemID string, expiry time.Time) error {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return err
	}
	if !item.Requires(models.CaptureExpiry) {
		return fmt.Errorf("item %s takes no expiry date", itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.ExpiryDate = &expiry
	return nil
}

// SetItemSerial records the item serial number.
func (s *InspectionService) SetItemSerial(checklistID, itemID, serial string) error {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return err
	}
	if !item.Requires(models.CaptureSerial) {
		return fmt.Errorf("item %s takes no serial number", itemID)
	}
	if serial == "" {
		return errors.New("serial number cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item.SerialNumber = serial
	return nil
}

// ResolveItem records the OK / Needs Attention outcome, gated by the
// validation engine.
func (s *InspectionService) ResolveItem(checklistID, itemID string, resolution models.ResolutionState, note string) (ItemProgress, error) {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return ItemProgress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Resolve(item, resolution, note); err != nil {
		return s.progress(item), err
	}
	return s.progress(item), nil
}

// ResetItem reopens an item with a full evidence reset.
func (s *InspectionService) ResetItem(checklistID, itemID string) error {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ResetItem(item)
	return nil
}

// AddLocationImage captures the checklist-level location image.
func (s *InspectionService) AddLocationImage(ctx context.Context, checklistID string) (models.ImageRef, error) {
	cl, err := s.find(checklistID)
	if err != nil {
		return models.ImageRef{}, err
	}
	if !cl.NeedsLocationImage {
		return models.ImageRef{}, fmt.Errorf("checklist %s takes no location image", checklistID)
	}

	img, err := s.capture.CaptureImage(ctx)
	if err != nil {
		return models.ImageRef{}, err
	}
	img.Label = "location"

	s.mu.Lock()
	defer s.mu.Unlock()
	cl.LocationImage = &img
	return img, nil
}

// SetChecklistSerial records the checklist-level serial number.
func (s *InspectionService) SetChecklistSerial(checklistID, serial string) error {
	cl, err := s.find(checklistID)
	if err != nil {
		return err
	}
	if !cl.NeedsSerialNumber {
		return fmt.Errorf("checklist %s takes no serial number", checklistID)
	}
	if serial == "" {
		return errors.New("serial number cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cl.SerialNumber = serial
	return nil
}

// SetChecklistExpiry records the checklist-level expiry date.
func (s *InspectionService) SetChecklistExpiry(checklistID string, expiry time.Time) error {
	cl, err := s.find(checklistID)
	if err != nil {
		return err
	}
	if !cl.NeedsExpiryDate {
		return fmt.Errorf("checklist %s takes no expiry date", checklistID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cl.ExpiryDate = &expiry
	return nil
}

// ItemState reports the gating summary for one item.
func (s *InspectionService) ItemState(checklistID, itemID string) (ItemProgress, error) {
	_, item, err := s.findItem(checklistID, itemID)
	if err != nil {
		return ItemProgress{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress(item), nil
}

// Completion reports the checklist's derived status and completion gate.
func (s *InspectionService) Completion(checklistID string) (CompletionState, error) {
	cl, err := s.find(checklistID)
	if err != nil {
		return CompletionState{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	can, missing := s.engine.CanCompleteChecklist(cl)
	return CompletionState{
		Status:      s.engine.ChecklistStatus(cl),
		CanComplete: can,
		Missing:     missing,
	}, nil
}

// ChecklistImages lists every image captured across the checklist, feeding
// the job gallery gate at sign-off.
func (s *InspectionService) ChecklistImages(jobID string) []models.ImageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var images []models.ImageRef
	for _, cl := range s.checklists {
		if cl.JobID != jobID {
			continue
		}
		if cl.LocationImage != nil {
			images = append(images, *cl.LocationImage)
		}
		for _, item := range cl.Items {
			images = append(images, item.Images...)
		}
	}
	return images
}

func (s *InspectionService) progress(item *models.InspectionItem) ItemProgress {
	verdict := s.engine.EvaluateItem(item)
	current, max, open := s.engine.ImageProgress(item)
	return ItemProgress{
		CanResolve:    verdict.Satisfied && item.Resolution == models.ResolutionUnresolved,
		Missing:       verdict.Messages,
		ImagesCurrent: current,
		ImagesMax:     max,
		CaptureOpen:   open,
	}
}

func (s *InspectionService) find(checklistID string) (*models.Checklist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cl, ok := s.checklists[checklistID]
	if !ok {
		return nil, fmt.Errorf("checklist %s not found", checklistID)
	}
	return cl, nil
}

func (s *InspectionService) findItem(checklistID, itemID string) (*models.Checklist, *models.InspectionItem, error) {
	cl, err := s.find(checklistID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := cl.Item(itemID)
	if !ok {
		return nil, nil, fmt.Errorf("item %s not found in checklist %s", itemID, checklistID)
	}
	return cl, item, nil
}

// snapshot deep-copies a checklist for external readers. Caller holds at
// least a read lock.
func (s *InspectionService) snapshot(cl *models.Checklist) *models.Checklist {
	copied := *cl
	copied.Items = make([]*models.InspectionItem, len(cl.Items))
	for i, item := range cl.Items {
		itemCopy := *item
		itemCopy.Images = append([]models.ImageRef(nil), item.Images...)
		copied.Items[i] = &itemCopy
	}
	return &copied
}
