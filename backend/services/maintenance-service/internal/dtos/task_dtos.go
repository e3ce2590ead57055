package dtos

import (
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
)

type CreateTaskRequest struct {
	BuildingID  uuid.UUID             `json:"building_id" validate:"required"`
	ComponentID *uuid.UUID            `json:"component_id,omitempty"`
	UnitID      *uuid.UUID            `json:"unit_id,omitempty"`
	Name        string                `json:"name" validate:"required,min=1,max=200"`
	Description *string               `json:"description,omitempty"`
	Specialty   string                `json:"specialty" validate:"required"`
	Recurrence  models.RecurrenceType `json:"recurrence" validate:"required,oneof=ONE_TIME WEEKLY BIWEEKLY MONTHLY QUARTERLY SEMI_ANNUALLY ANNUALLY"`
	Cost        *float64              `json:"cost,omitempty" validate:"omitempty,gte=0"`
	ProviderID  *uuid.UUID            `json:"provider_id,omitempty"`
	TaskDate    *time.Time            `json:"task_date,omitempty"`
	StartDate   *time.Time            `json:"start_date,omitempty"`
	EndDate     *time.Time            `json:"end_date,omitempty"`
}

type CreateTaskResponse struct {
	Task      *models.MaintenanceTask `json:"task"`
	Instances int                     `json:"instances"`
	Message   string                  `json:"message"`
}

type UpdateTaskRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string    `json:"description,omitempty"`
	Specialty     *string    `json:"specialty,omitempty" validate:"omitempty,min=1"`
	Cost          *float64   `json:"cost,omitempty" validate:"omitempty,gte=0"`
	ProviderID    *uuid.UUID `json:"provider_id,omitempty"`
	ClearProvider bool       `json:"clear_provider,omitempty"`
	TaskDate      *time.Time `json:"task_date,omitempty"`
}

type SetTaskStatusRequest struct {
	Status models.TaskStatusType `json:"status" validate:"required,oneof=NEW SENT ON_HOLD COMPLETED"`
}

// TaskView is a task as listed to an actor.
type TaskView struct {
	models.MaintenanceTask
	FallsOnHoliday bool   `json:"falls_on_holiday"`
	HolidayName    string `json:"holiday_name,omitempty"`
}

type ChecklistResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Items  []string  `json:"items"`
}
