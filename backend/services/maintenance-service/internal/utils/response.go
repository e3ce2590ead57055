package utils

// Error codes specific to maintenance-service only.
const (
	ErrCodeInvalidTransition = "invalid_status_transition"
	ErrCodeSpecialtyMismatch = "specialty_mismatch"
)
