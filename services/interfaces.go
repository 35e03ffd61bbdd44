package services

import (
	"context"
	"fieldops-client/models"
	"time"
)

// JobStateMachineInterface defines the contract for job transitions
type JobStateMachineInterface interface {
	AttemptTransition(ctx context.Context, jobID string, action models.TransitionAction, technicianID, notes string) (models.Job, error)
}

// InspectionServiceInterface defines the contract for checklist sessions
type InspectionServiceInterface interface {
	OpenChecklist(jobID, template string) (*models.Checklist, error)
	Checklist(checklistID string) (*models.Checklist, error)
	AddItemImage(ctx context.Context, checklistID, itemID string) (models.ImageRef, ItemProgress, error)
	RecordItemVideo(ctx context.Context, checklistID, itemID string) (models.VideoRef, error)
	SetItemCondition(checklistID, itemID, condition string) error
	SetItemExpiry(checklistID, itemID string, expiry time.Time) error
	SetItemSerial(checklistID, itemID, serial string) error
	ResolveItem(checklistID, itemID string, resolution models.ResolutionState, note string) (ItemProgress, error)
	ResetItem(checklistID, itemID string) error
	AddLocationImage(ctx context.Context, checklistID string) (models.ImageRef, error)
	SetChecklistSerial(checklistID, serial string) error
	SetChecklistExpiry(checklistID string, expiry time.Time) error
	ItemState(checklistID, itemID string) (ItemProgress, error)
	Completion(checklistID string) (CompletionState, error)
	ChecklistImages(jobID string) []models.ImageRef
}

// SignOffAggregatorInterface defines the contract for the sign-off gates
type SignOffAggregatorInterface interface {
	Open(jobID string) (*models.SignOffRecord, error)
	Record(jobID string) (*models.SignOffRecord, error)
	SetSignature(jobID, signature string) error
	SetTerms(jobID string, accepted bool) error
	SetUDFComplete(jobID string, complete bool) error
	SetStock(jobID string, used []models.StockUsage, noStockUsed bool) error
	AddGalleryImage(ctx context.Context, jobID string) (models.ImageRef, error)
	CanComplete(jobID string) (bool, []string)
	Save(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID, notes string) (models.Job, error)
}
