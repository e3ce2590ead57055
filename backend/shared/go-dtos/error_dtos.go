// backend/shared/go-dtos/error_dtos.go
package dtos

// ValidationErrorDetail is a shared DTO for structured validation error responses.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// BlockingReference names a record that prevents a delete.
type BlockingReference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CascadeProgress is returned when a cascade stops part way.
type CascadeProgress struct {
	CompletedSteps []string `json:"completed_steps"`
	FailedStep     string   `json:"failed_step"`
}
