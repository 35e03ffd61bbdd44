package models

// APIResponse is a generic structure for all API responses, both the surface
// this client exposes to dashboard collaborators and the envelope the remote
// field-service API replies with.
type APIResponse struct {
	Status  string      `json:"status"`            // "success" or "error"
	Code    int         `json:"code"`              // HTTP status code (200, 400, 500, etc.)
	Message string      `json:"message,omitempty"` // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Any response data (can be map, struct, list, etc.)
	Error   *APIError   `json:"error,omitempty"`   // Detailed error info (nil if success)
}

// APIError holds detailed error information
type APIError struct {
	Type    string   `json:"type,omitempty"`    // e.g., "IllegalTransition", "ValidationUnmet"
	Details string   `json:"details,omitempty"` // More context about the error
	Missing []string `json:"missing,omitempty"` // For validation errors, the itemized unmet conditions
}

// NewSuccessResponse builds the success envelope.
func NewSuccessResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse builds the error envelope.
func NewErrorResponse(code int, message string, apiErr *APIError) APIResponse {
	return APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Error:   apiErr,
	}
}
