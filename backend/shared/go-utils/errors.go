// backend/shared/go-utils/errors.go
package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrEmailExists     = errors.New("email_exists")
	ErrUsernameExists  = errors.New("username_exists")
	ErrNotFound        = errors.New("not_found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid_password")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (e.g., Twilio, SendGrid, OpenAI)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")

	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, appErr.Details, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
