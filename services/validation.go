package services

import (
	"fieldops-client/models"
	"fmt"
)

// absentConditions are the condition values that excuse an item from its
// image count: there is nothing left to photograph.
var defaultAbsentConditions = []string{"Stolen", "Don't Have"}

// defaultUnconditionalImageItems always have to meet their image count, no
// matter which condition is chosen. License and ID documents fall here.
var defaultUnconditionalImageItems = []string{
	"vi_drivers_license",
	"vi_operator_card",
	"si_id_badge",
}

// ItemVerdict is the result of evaluating an item's capture requirements
// against its evidence payload.
type ItemVerdict struct {
	Satisfied bool
	Missing   []models.CaptureKind
	Messages  []string
}

// ValidationEngine gates item resolution, checklist completion and, through
// the sign-off aggregator, job completion. Evaluation is a pure function of
// the item's declared requirements and current evidence.
type ValidationEngine struct {
	unconditionalImageItems map[string]struct{}
	absentConditions        map[string]struct{}
}

// EngineOption tweaks the engine's rule tables.
type EngineOption func(*ValidationEngine)

// WithUnconditionalImageItems replaces the allow-list of item IDs whose
// image count applies regardless of condition.
func WithUnconditionalImageItems(itemIDs ...string) EngineOption {
	return func(e *ValidationEngine) {
		e.unconditionalImageItems = toSet(itemIDs)
	}
}

// WithAbsentConditions replaces the condition values that waive image counts.
func WithAbsentConditions(conditions ...string) EngineOption {
	return func(e *ValidationEngine) {
		e.absentConditions = toSet(conditions)
	}
}

func NewValidationEngine(opts ...EngineOption) *ValidationEngine {
	e := &ValidationEngine{
		unconditionalImageItems: toSet(defaultUnconditionalImageItems),
		absentConditions:        toSet(defaultAbsentConditions),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// EvaluateItem applies the capture rules, most specific first. A missing
// condition selection gates everything else: nothing can satisfy the item
// until a condition is chosen.
func (e *ValidationEngine) EvaluateItem(item *models.InspectionItem) ItemVerdict {
	if item.Requires(models.CaptureCondition) && item.Condition == "" {
		return ItemVerdict{
			Missing:  []models.CaptureKind{models.CaptureCondition},
			Messages: []string{fmt.Sprintf("%s: select a condition", item.Name)},
		}
	}

	var verdict ItemVerdict

	if item.Requires(models.CaptureExpiry) && item.ExpiryDate == nil {
		verdict.add(models.CaptureExpiry, fmt.Sprintf("%s: capture the expiry date", item.Name))
	}

	if item.Requires(models.CaptureSerial) && item.SerialNumber == "" {
		verdict.add(models.CaptureSerial, fmt.Sprintf("%s: capture the serial number", item.Name))
	}

	if item.Requires(models.CaptureVideo) && item.Video == nil {
		verdict.add(models.CaptureVideo, fmt.Sprintf("%s: record the video", item.Name))
	}

	if item.Requires(models.CaptureImage) {
		needed := item.ImageBound()
		if e.imageCountApplies(item) && len(item.Images) < needed {
			verdict.add(models.CaptureImage,
				fmt.Sprintf("%s: capture %d of %d images", item.Name, needed-len(item.Images), needed))
		}
	}

	verdict.Satisfied = len(verdict.Missing) == 0
	return verdict
}

func (v *ItemVerdict) add(kind models.CaptureKind, message string) {
	v.Missing = append(v.Missing, kind)
	v.Messages = append(v.Messages, message)
}

// imageCountApplies decides whether the declared image count binds this
// item. Allow-listed items always count; every other item is excused only
// when its chosen condition says the thing is absent.
func (e *ValidationEngine) imageCountApplies(item *models.InspectionItem) bool {
	if _, unconditional := e.unconditionalImageItems[item.ItemID]; unconditional {
		return true
	}
	if _, absent := e.absentConditions[item.Condition]; absent {
		return false
	}
	return true
}

// CanResolve reports whether the item's OK / Needs Attention controls may be
// enabled.
func (e *ValidationEngine) CanResolve(item *models.InspectionItem) bool {
	return e.EvaluateItem(item).Satisfied
}

// Resolve records the item outcome. The unresolved -> resolved transition is
// one-way within a session: a resolved item refuses another resolution until
// it is fully reset.
func (e *ValidationEngine) Resolve(item *models.InspectionItem, resolution models.ResolutionState, note string) error {
	if resolution != models.ResolutionOK && resolution != models.ResolutionNeedsAttention {
		return fmt.Errorf("invalid resolution %q", resolution)
	}

	if item.Resolution != models.ResolutionUnresolved {
		return fmt.Errorf("item %s is already resolved; reset it to change the outcome", item.ItemID)
	}

	if verdict := e.EvaluateItem(item); !verdict.Satisfied {
		return &models.ValidationUnmetError{Missing: verdict.Messages}
	}

	item.Resolution = resolution
	item.ResolutionNote = note
	return nil
}

// ResetItem reopens an item: all evidence and the resolution are cleared.
func (e *ValidationEngine) ResetItem(item *models.InspectionItem) {
	item.Condition = ""
	item.ExpiryDate = nil
	item.SerialNumber = ""
	item.Images = nil
	item.Video = nil
	item.Resolution = models.ResolutionUnresolved
	item.ResolutionNote = ""
}

// ImageProgress reports the running current/max capture count for an item,
// and whether the capture control should still be offered.
func (e *ValidationEngine) ImageProgress(item *models.InspectionItem) (current, max int, open bool) {
	bound := item.ImageBound()
	return len(item.Images), bound, len(item.Images) < bound
}

// ChecklistStatus derives the overall state purely from resolution counts:
// pending with nothing resolved, completed once every required item is
// resolved, in-progress in between.
func (e *ValidationEngine) ChecklistStatus(cl *models.Checklist) models.ChecklistStatus {
	resolved := 0
	requiredTotal := 0
	requiredResolved := 0
	for _, item := range cl.Items {
		if item.Resolution != models.ResolutionUnresolved {
			resolved++
		}
		if item.Required {
			requiredTotal++
			if item.Resolution != models.ResolutionUnresolved {
				requiredResolved++
			}
		}
	}

	if resolved == 0 {
		return models.ChecklistPending
	}
	if requiredResolved == requiredTotal {
		return models.ChecklistCompleted
	}
	return models.ChecklistInProgress
}

// CanCompleteChecklist gates checklist completion: every required item must
// be resolved and checklist-level evidence must be present. Optional items
// never block, and a checklist with zero required items is trivially
// completable.
func (e *ValidationEngine) CanCompleteChecklist(cl *models.Checklist) (bool, []string) {
	var missing []string

	for _, item := range cl.Items {
		if item.Required && item.Resolution == models.ResolutionUnresolved {
			missing = append(missing, fmt.Sprintf("%s: resolve this item", item.Name))
		}
	}

	if cl.NeedsLocationImage && cl.LocationImage == nil {
		missing = append(missing, "capture the location image")
	}
	if cl.NeedsSerialNumber && cl.SerialNumber == "" {
		missing = append(missing, "capture the serial number")
	}
	if cl.NeedsExpiryDate && cl.ExpiryDate == nil {
		missing = append(missing, "capture the expiry date")
	}

	return len(missing) == 0, missing
}
