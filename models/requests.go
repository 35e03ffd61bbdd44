package models

import "time"

// Request bodies for the client surface. Bound with gin and checked with
// go-playground validator tags.

// TransitionRequest carries the optional note for pause and complete.
type TransitionRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

// OpenChecklistRequest opens an inspection checklist for a job.
type OpenChecklistRequest struct {
	JobID    string `json:"jobID" validate:"required"`
	Template string `json:"template" validate:"required,oneof=vehicle_inspection safety_inspection"`
}

// ConditionRequest selects a condition option for an item.
type ConditionRequest struct {
	Condition string `json:"condition" validate:"required"`
}

// ExpiryRequest captures an expiry date.
type ExpiryRequest struct {
	ExpiryDate time.Time `json:"expiryDate" validate:"required"`
}

// SerialRequest captures a serial number.
type SerialRequest struct {
	SerialNumber string `json:"serialNumber" validate:"required"`
}

// ResolveRequest records an item outcome.
type ResolveRequest struct {
	Resolution ResolutionState `json:"resolution" validate:"required,oneof=ok needs_attention"`
	Note       string          `json:"note,omitempty" validate:"max=2000"`
}

// SignatureRequest stores the captured customer signature.
type SignatureRequest struct {
	Signature string `json:"signature" validate:"required"`
}

// TermsRequest toggles terms acceptance.
type TermsRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

// UDFRequest records the externally sourced UDF completeness flag.
type UDFRequest struct {
	Complete *bool `json:"complete" validate:"required"`
}

// StockRequest settles stock usage for the sign-off.
type StockRequest struct {
	Items       []StockUsage `json:"items,omitempty" validate:"dive"`
	NoStockUsed bool         `json:"noStockUsed,omitempty"`
}
