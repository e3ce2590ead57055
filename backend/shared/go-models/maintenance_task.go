package models

import (
	"time"

	"github.com/google/uuid"
)

/*──────────────────────────────────────────────────────────────────────────────
  Primary enums
──────────────────────────────────────────────────────────────────────────────*/
type TaskStatusType string

const (
	TaskStatusNew       TaskStatusType = "NEW"
	TaskStatusSent      TaskStatusType = "SENT"
	TaskStatusOnHold    TaskStatusType = "ON_HOLD"
	TaskStatusCompleted TaskStatusType = "COMPLETED"
)

func (s TaskStatusType) Valid() bool {
	switch s {
	case TaskStatusNew, TaskStatusSent, TaskStatusOnHold, TaskStatusCompleted:
		return true
	}
	return false
}

type RecurrenceType string

const (
	RecurrenceOneTime      RecurrenceType = "ONE_TIME"
	RecurrenceWeekly       RecurrenceType = "WEEKLY"
	RecurrenceBiWeekly     RecurrenceType = "BIWEEKLY"
	RecurrenceMonthly      RecurrenceType = "MONTHLY"
	RecurrenceQuarterly    RecurrenceType = "QUARTERLY"
	RecurrenceSemiAnnually RecurrenceType = "SEMI_ANNUALLY"
	RecurrenceAnnually     RecurrenceType = "ANNUALLY"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceOneTime, RecurrenceWeekly, RecurrenceBiWeekly, RecurrenceMonthly,
		RecurrenceQuarterly, RecurrenceSemiAnnually, RecurrenceAnnually:
		return true
	}
	return false
}

/*──────────────────────────────────────────────────────────────────────────────
  Entity
──────────────────────────────────────────────────────────────────────────────*/

// MaintenanceTask is either a recurring master (StartDate/EndDate set, no
// TaskDate) or a one-time task (TaskDate set). Instances generated from a
// master carry RecurringTaskID.
type MaintenanceTask struct {
	Versioned
	ID          uuid.UUID      `json:"id"`
	BuildingID  uuid.UUID      `json:"building_id"`
	ComponentID *uuid.UUID     `json:"component_id,omitempty"`
	UnitID      *uuid.UUID     `json:"unit_id,omitempty"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Specialty   string         `json:"specialty"`
	Recurrence  RecurrenceType `json:"recurrence"`
	Status      TaskStatusType `json:"status"`
	Cost        *float64       `json:"cost,omitempty"`
	ProviderID  *uuid.UUID     `json:"provider_id,omitempty"`

	TaskDate  *time.Time `json:"task_date,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	RecurringTaskID *uuid.UUID `json:"recurring_task_id,omitempty"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsMaster reports whether the task is a recurring definition.
func (t *MaintenanceTask) IsMaster() bool {
	return t.Recurrence != RecurrenceOneTime && t.RecurringTaskID == nil
}
