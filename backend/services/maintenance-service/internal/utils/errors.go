// backend/services/maintenance-service/internal/utils/errors.go

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/constants"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

/*
Sentinel errors for maintenance-service domain logic.
The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrSpecialtyMismatch = errors.New("specialty_mismatch")
	ErrTerminalRequest   = errors.New("request_is_terminal")
	ErrInvalidPayload    = errors.New("invalid_payload")
)

// ValidationError rejects input that violates a data-model rule. Nothing
// has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Reference names a record that blocks an operation.
type Reference struct {
	Type string
	ID   uuid.UUID
	Name string
}

// ConflictError is returned when a record cannot change because others
// still point at it, or a uniqueness rule would break.
type ConflictError struct {
	Message  string
	Blocking []Reference
}

func (e *ConflictError) Error() string {
	if len(e.Blocking) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		names = append(names, b.Type+" "+b.ID.String())
	}
	return e.Message + " (" + strings.Join(names, ", ") + ")"
}

// PartialCascadeFailure reports a multi-step delete that stopped part way.
// Re-running the same delete finishes it.
type PartialCascadeFailure struct {
	Operation      string
	CompletedSteps []string
	FailedStep     string
	Err            error
}

func (e *PartialCascadeFailure) Error() string {
	return fmt.Sprintf("%s stopped at %q after %d completed steps: %v",
		e.Operation, e.FailedStep, len(e.CompletedSteps), e.Err)
}

func (e *PartialCascadeFailure) Unwrap() error { return e.Err }

// AuthorizationError means the actor may not perform the action on the
// target, or the target is outside the actor's visible scope.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "not authorized to " + e.Action
}

func NewAuthorizationError(format string, args ...any) error {
	return &AuthorizationError{Action: fmt.Sprintf(format, args...)}
}

// StaleReferenceError is logged, never surfaced: a record points at
// something that no longer exists.
type StaleReferenceError struct {
	Entity string
	ID     uuid.UUID
	From   string
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("stale reference from %s to %s %s", e.From, e.Entity, e.ID)
}

// NotFoundError is returned for ids that do not resolve.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFoundError(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ToAppError maps the service error taxonomy onto HTTP responses.
func ToAppError(err error) *utils.AppError {
	var (
		appErr   *utils.AppError
		valErr   *ValidationError
		conflict *ConflictError
		partial  *PartialCascadeFailure
		authErr  *AuthorizationError
		notFound *NotFoundError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &valErr):
		return &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeValidation,
			Message:    valErr.Error(),
			Details:    []dtos.ValidationErrorDetail{{Field: valErr.Field, Message: valErr.Message, Code: utils.ErrCodeValidation}},
			Err:        err,
		}
	case errors.As(err, &conflict):
		refs := make([]dtos.BlockingReference, 0, len(conflict.Blocking))
		for _, b := range conflict.Blocking {
			refs = append(refs, dtos.BlockingReference{Type: b.Type, ID: b.ID.String(), Name: b.Name})
		}
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeConflict,
			Message:    conflict.Message,
			Details:    refs,
			Err:        err,
		}
	case errors.As(err, &partial):
		return &utils.AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       utils.ErrCodePartialCascade,
			Message:    "Delete did not finish; retry to complete it",
			Details:    dtos.CascadeProgress{CompletedSteps: partial.CompletedSteps, FailedStep: partial.FailedStep},
			Err:        err,
		}
	case errors.As(err, &authErr):
		return &utils.AppError{
			StatusCode: http.StatusForbidden,
			Code:       utils.ErrCodeForbidden,
			Message:    "You are not allowed to " + authErr.Action,
			Err:        err,
		}
	case errors.As(err, &notFound):
		return &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    notFound.Error(),
			Err:        err,
		}
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTerminalRequest):
		return &utils.AppError{StatusCode: http.StatusConflict, Code: ErrCodeInvalidTransition, Message: err.Error(), Err: err}
	case errors.Is(err, ErrSpecialtyMismatch):
		return &utils.AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeSpecialtyMismatch, Message: err.Error(), Err: err}
	case errors.Is(err, utils.ErrRowVersionConflict):
		return &utils.AppError{StatusCode: http.StatusConflict, Code: utils.ErrCodeRowVersionConflict, Message: constants.ErrMsgRowVersionConflictRefresh, Err: err}
	case errors.Is(err, utils.ErrRateLimitExceeded):
		return &utils.AppError{StatusCode: http.StatusTooManyRequests, Code: utils.ErrCodeRateLimitExceeded, Message: "Too many attempts, try again later", Err: err}
	case errors.Is(err, utils.ErrExternalServiceFailure):
		return &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeExternalServiceFailure, Message: "Upstream service failed", Err: err}
	default:
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "An unexpected error occurred", Err: err}
	}
}
