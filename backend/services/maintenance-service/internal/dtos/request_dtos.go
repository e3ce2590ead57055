package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type CreateServiceRequestRequest struct {
	TaskID        uuid.UUID  `json:"task_id" validate:"required"`
	ProviderID    uuid.UUID  `json:"provider_id" validate:"required"`
	Specialty     string     `json:"specialty,omitempty"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Cost          *float64   `json:"cost,omitempty" validate:"omitempty,gte=0"`
	IsUrgent      bool       `json:"is_urgent"`
}

type UpdateServiceRequestRequest struct {
	ProviderID    *uuid.UUID `json:"provider_id,omitempty"`
	Notes         *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Cost          *float64   `json:"cost,omitempty" validate:"omitempty,gte=0"`
	IsUrgent      *bool      `json:"is_urgent,omitempty"`
}

type TransitionRequest struct {
	Status models.RequestStatusType `json:"status" validate:"required,oneof=SENT ACCEPTED REFUSED IN_PROGRESS COMPLETED"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

type ServiceRequestResponse struct {
	Request *models.ServiceRequest `json:"request"`
	Message string                 `json:"message"`
}

type DraftEmailRequest struct {
	TaskID     uuid.UUID `json:"task_id" validate:"required"`
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
	IsUrgent   bool      `json:"is_urgent"`
	Notes      *string   `json:"notes,omitempty"`
}

type DraftEmailResponse struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
}

// ProviderDashboard is everything a service provider sees.
type ProviderDashboard struct {
	Provider  *models.ServiceProvider   `json:"provider"`
	Requests  []*models.ServiceRequest  `json:"requests"`
	Tasks     []*models.MaintenanceTask `json:"tasks"`
	Buildings []*models.Building        `json:"buildings"`
}
