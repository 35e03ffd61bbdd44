package models

import "time"

// StockUsage is one line of stock consumed on a job.
type StockUsage struct {
	StockID     string `json:"stockID" validate:"required"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// SignOffRecord is the terminal artifact for a job. It exists only while the
// sign-off step is open; completing the job supersedes it and it is no longer
// editable. The signature is session-scoped: reopening sign-off clears it.
type SignOffRecord struct {
	SignOffID    string `json:"signOffID"`
	JobID        string `json:"jobID"`
	TechnicianID string `json:"technicianID"`

	SignatureImage string `json:"signatureImage,omitempty"`
	TermsAccepted  bool   `json:"termsAccepted"`

	UDFComplete bool         `json:"udfComplete"`
	StockUsed   []StockUsage `json:"stockUsed,omitempty"`
	NoStockUsed bool         `json:"noStockUsed"`

	GalleryImages []ImageRef `json:"galleryImages,omitempty"`

	OpenedAt    time.Time  `json:"openedAt"`
	SavedAt     *time.Time `json:"savedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// StockConfirmed reports whether stock usage has been settled either way:
// a non-empty usage record, or an explicit no-stock declaration.
func (r *SignOffRecord) StockConfirmed() bool {
	return len(r.StockUsed) > 0 || r.NoStockUsed
}
