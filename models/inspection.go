package models

import "time"

// ResolutionState is the outcome recorded against an inspection item.
// Transitions out of unresolved are one-way within a checklist session;
// reopening an item is a full reset, not a state transition.
type ResolutionState string

const (
	ResolutionUnresolved     ResolutionState = "unresolved"
	ResolutionOK             ResolutionState = "ok"
	ResolutionNeedsAttention ResolutionState = "needs_attention"
)

// CaptureKind identifies one variant of evidence an item can require.
type CaptureKind string

const (
	CaptureImage     CaptureKind = "image"
	CaptureVideo     CaptureKind = "video"
	CaptureExpiry    CaptureKind = "expiry_date"
	CaptureSerial    CaptureKind = "serial_number"
	CaptureCondition CaptureKind = "condition"
)

// CaptureRequirement is a tagged variant describing one piece of evidence an
// inspection item needs before it can be resolved. Only the fields relevant
// to the Kind are populated.
type CaptureRequirement struct {
	Kind CaptureKind `json:"kind" validate:"required,oneof=image video expiry_date serial_number condition"`

	// image: the declared count is both the capture bound and the
	// resolve threshold.
	ImageCount int `json:"imageCount,omitempty"`

	// condition
	Options []string `json:"options,omitempty"`
}

type ImageRef struct {
	ImageID    string    `json:"imageID"`
	Label      string    `json:"label,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

type VideoRef struct {
	VideoID         string    `json:"videoID"`
	DurationSeconds float64   `json:"durationSeconds"`
	CapturedAt      time.Time `json:"capturedAt"`
}

// InspectionItem is one line of a fleet/safety checklist: the evidence it
// requires and the evidence captured so far.
type InspectionItem struct {
	ItemID       string               `json:"itemID"`
	Name         string               `json:"name"`
	Required     bool                 `json:"required"`
	Requirements []CaptureRequirement `json:"requirements,omitempty"`

	Condition    string     `json:"condition,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	Images       []ImageRef `json:"images,omitempty"`
	Video        *VideoRef  `json:"video,omitempty"`

	Resolution     ResolutionState `json:"resolution"`
	ResolutionNote string          `json:"resolutionNote,omitempty"`
}

// Requirement returns the requirement of the given kind, if declared.
func (i *InspectionItem) Requirement(kind CaptureKind) (CaptureRequirement, bool) {
	for _, r := range i.Requirements {
		if r.Kind == kind {
			return r, true
		}
	}
	return CaptureRequirement{}, false
}

func (i *InspectionItem) Requires(kind CaptureKind) bool {
	_, ok := i.Requirement(kind)
	return ok
}

// ImageBound returns the declared image count. Items that declare an image
// requirement without an explicit count take a single image.
func (i *InspectionItem) ImageBound() int {
	req, ok := i.Requirement(CaptureImage)
	if !ok {
		return 0
	}
	if req.ImageCount > 0 {
		return req.ImageCount
	}
	return 1
}

type ChecklistStatus string

const (
	ChecklistPending    ChecklistStatus = "pending"
	ChecklistInProgress ChecklistStatus = "in_progress"
	ChecklistCompleted  ChecklistStatus = "completed"
)

// Checklist is an ordered inspection: its items plus any checklist-level
// evidence shared across all items (a location image and/or a single serial
// number or expiry date).
type Checklist struct {
	ChecklistID string            `json:"checklistID"`
	JobID       string            `json:"jobID"`
	Template    string            `json:"template"`
	Name        string            `json:"name"`
	Items       []*InspectionItem `json:"items"`

	NeedsLocationImage bool      `json:"needsLocationImage,omitempty"`
	LocationImage      *ImageRef `json:"locationImage,omitempty"`

	NeedsSerialNumber bool   `json:"needsSerialNumber,omitempty"`
	SerialNumber      string `json:"serialNumber,omitempty"`

	NeedsExpiryDate bool       `json:"needsExpiryDate,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`

	OpenedAt time.Time `json:"openedAt"`
}

// Item returns the item with the given ID.
func (c *Checklist) Item(itemID string) (*InspectionItem, bool) {
	for _, it := range c.Items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return nil, false
}
