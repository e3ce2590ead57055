package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatusType string

const (
	RequestStatusSent       RequestStatusType = "SENT"
	RequestStatusAccepted   RequestStatusType = "ACCEPTED"
	RequestStatusRefused    RequestStatusType = "REFUSED"
	RequestStatusInProgress RequestStatusType = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatusType = "COMPLETED"
)

func (s RequestStatusType) Valid() bool {
	switch s {
	case RequestStatusSent, RequestStatusAccepted, RequestStatusRefused,
		RequestStatusInProgress, RequestStatusCompleted:
		return true
	}
	return false
}

// IsTerminal is true for Refused and Completed.
func (s RequestStatusType) IsTerminal() bool {
	return s == RequestStatusRefused || s == RequestStatusCompleted
}

// StatusChange is one entry of the append-only history.
type StatusChange struct {
	Status    RequestStatusType `json:"status"`
	ChangedAt time.Time         `json:"changed_at"`
	ChangedBy string            `json:"changed_by"`
}

type RequestComment struct {
	ID         uuid.UUID `json:"id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type RequestDocument struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ServiceRequest is the outsourcing of a MaintenanceTask to a provider.
type ServiceRequest struct {
	Versioned
	ID            uuid.UUID         `json:"id"`
	TaskID        uuid.UUID         `json:"task_id"`
	ProviderID    uuid.UUID         `json:"provider_id"`
	Specialty     string            `json:"specialty"`
	Notes         *string           `json:"notes,omitempty"`
	Status        RequestStatusType `json:"status"`
	ScheduledDate *time.Time        `json:"scheduled_date,omitempty"`
	Cost          *float64          `json:"cost,omitempty"`
	IsUrgent      bool              `json:"is_urgent"`

	StatusHistory []StatusChange    `json:"status_history"`
	Comments      []RequestComment  `json:"comments"`
	Documents     []RequestDocument `json:"documents"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
