package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type TaskService struct {
	repos  Repositories
	scope  *ScopeService
	openai *OpenAIService
	audit  *AuditService
	bus    events.ChangePublisher
}

func NewTaskService(repos Repositories, scope *ScopeService, openai *OpenAIService, audit *AuditService, bus events.ChangePublisher) *TaskService {
	return &TaskService{repos: repos, scope: scope, openai: openai, audit: audit, bus: bus}
}

// validateTaskRefs checks that the optional component, unit and provider
// exist and that component and unit sit in the task's building.
func (s *TaskService) validateTaskRefs(ctx context.Context, actor models.Actor, buildingID uuid.UUID, componentID, unitID, providerID *uuid.UUID) error {
	if componentID != nil {
		c, err := s.repos.Components.GetByID(ctx, *componentID)
		if err != nil {
			return err
		}
		if c == nil || c.BuildingID != buildingID {
			return internal_utils.NewValidationError("component_id", "component does not belong to this building")
		}
	}
	if unitID != nil {
		u, err := s.repos.Units.GetByID(ctx, *unitID)
		if err != nil {
			return err
		}
		if u == nil || u.BuildingID != buildingID {
			return internal_utils.NewValidationError("unit_id", "unit does not belong to this building")
		}
	}
	if providerID != nil {
		providers, err := s.scope.ScopedProviders(ctx, actor)
		if err != nil {
			return err
		}
		found := false
		for _, p := range providers {
			found = found || p.ID == *providerID
		}
		if !found {
			return internal_utils.NewValidationError("provider_id", "unknown service provider")
		}
	}
	return nil
}

/*
CreateTask stores a one-time task, or a recurring master together with all
of its generated instances. Instances are created one after another with
fresh ids.
*/
func (s *TaskService) CreateTask(ctx context.Context, actor models.Actor, in dtos.CreateTaskRequest) (*dtos.CreateTaskResponse, error) {
	if _, err := s.scope.RequireBuilding(ctx, actor, in.BuildingID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, internal_utils.NewValidationError("name", "task name is required")
	}
	if strings.TrimSpace(in.Specialty) == "" {
		return nil, internal_utils.NewValidationError("specialty", "specialty is required")
	}
	if !in.Recurrence.Valid() {
		return nil, internal_utils.NewValidationError("recurrence", "unknown recurrence")
	}
	if in.Cost != nil && *in.Cost < 0 {
		return nil, internal_utils.NewValidationError("cost", "cost cannot be negative")
	}

	task := &models.MaintenanceTask{
		ID:          uuid.New(),
		BuildingID:  in.BuildingID,
		ComponentID: in.ComponentID,
		UnitID:      in.UnitID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Specialty:   strings.TrimSpace(in.Specialty),
		Recurrence:  in.Recurrence,
		Status:      models.TaskStatusNew,
		Cost:        in.Cost,
		ProviderID:  in.ProviderID,
		CreatedBy:   actor.ID,
	}
	if in.Recurrence == models.RecurrenceOneTime {
		if in.TaskDate == nil {
			return nil, internal_utils.NewValidationError("task_date", "a one-time task needs a date")
		}
		d := utils.DateOnly(*in.TaskDate)
		task.TaskDate = &d
	} else {
		if in.StartDate == nil || in.EndDate == nil {
			return nil, internal_utils.NewValidationError("start_date", "a recurring task needs start and end dates")
		}
		if in.EndDate.Before(*in.StartDate) {
			return nil, internal_utils.NewValidationError("end_date", "end date is before start date")
		}
		start, end := utils.DateOnly(*in.StartDate), utils.DateOnly(*in.EndDate)
		task.StartDate, task.EndDate = &start, &end
	}
	if err := s.validateTaskRefs(ctx, actor, in.BuildingID, in.ComponentID, in.UnitID, in.ProviderID); err != nil {
		return nil, err
	}

	if err := s.repos.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	events.Emit(ctx, s.bus, events.EntityTask, task.ID, events.OpCreate)

	resp := &dtos.CreateTaskResponse{Task: task, Message: "Task created"}
	if task.IsMaster() {
		expanded := ExpandRecurringTask(*task)
		instances := make([]*models.MaintenanceTask, 0, len(expanded))
		for i := range expanded {
			inst := expanded[i]
			inst.ID = uuid.New()
			inst.CreatedBy = actor.ID
			instances = append(instances, &inst)
		}
		if err := s.repos.Tasks.CreateMany(ctx, instances); err != nil {
			return nil, fmt.Errorf("create task instances: %w", err)
		}
		for _, inst := range instances {
			events.Emit(ctx, s.bus, events.EntityTask, inst.ID, events.OpCreate)
		}
		resp.Instances = len(instances)
		resp.Message = fmt.Sprintf("Recurring task created with %s", plural(len(instances), "scheduled instance", "scheduled instances"))
	}
	s.audit.Record(ctx, actor, models.AuditCreate, models.TargetMaintenanceTask, task.ID, map[string]any{
		"name":      task.Name,
		"instances": resp.Instances,
	})
	return resp, nil
}

func taskView(t *models.MaintenanceTask) dtos.TaskView {
	v := dtos.TaskView{MaintenanceTask: *t}
	if t.TaskDate != nil {
		v.HolidayName, v.FallsOnHoliday = internal_utils.ObservedHoliday(*t.TaskDate)
	}
	return v
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	BuildingID *uuid.UUID
	MasterID   *uuid.UUID
	Status     *models.TaskStatusType
}

// ListTasks returns visible tasks ordered by date, masters by start date.
func (s *TaskService) ListTasks(ctx context.Context, actor models.Actor, f TaskFilter) ([]dtos.TaskView, error) {
	snap, err := s.scope.SnapshotFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	tasks := filter(snap.Tasks, func(t *models.MaintenanceTask) bool {
		if f.BuildingID != nil && t.BuildingID != *f.BuildingID {
			return false
		}
		if f.MasterID != nil && (t.RecurringTaskID == nil || *t.RecurringTaskID != *f.MasterID) {
			return false
		}
		return f.Status == nil || t.Status == *f.Status
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		return sortDate(tasks[i]).Before(sortDate(tasks[j]))
	})
	out := make([]dtos.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskView(t))
	}
	return out, nil
}

func sortDate(t *models.MaintenanceTask) time.Time {
	switch {
	case t.TaskDate != nil:
		return *t.TaskDate
	case t.StartDate != nil:
		return *t.StartDate
	}
	return t.CreatedAt
}

func (s *TaskService) GetTask(ctx context.Context, actor models.Actor, id uuid.UUID) (*dtos.TaskView, error) {
	t, err := s.scope.RequireTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	v := taskView(t)
	return &v, nil
}

// UpdateTask edits the descriptive fields of a task. Recurrence and dates of
// a master are fixed once its instances exist.
func (s *TaskService) UpdateTask(ctx context.Context, actor models.Actor, id uuid.UUID, in dtos.UpdateTaskRequest) (*models.MaintenanceTask, error) {
	current, err := s.scope.RequireTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, internal_utils.NewValidationError("name", "task name is required")
	}
	if in.TaskDate != nil && current.IsMaster() {
		return nil, internal_utils.NewValidationError("task_date", "a recurring task has no single date")
	}
	if in.ProviderID != nil {
		if err := s.validateTaskRefs(ctx, actor, current.BuildingID, nil, nil, in.ProviderID); err != nil {
			return nil, err
		}
	}

	var updated models.MaintenanceTask
	err = s.repos.Tasks.UpdateWithRetry(ctx, id, func(t *models.MaintenanceTask) error {
		if in.Name != nil {
			t.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			t.Description = clonePtr(in.Description)
		}
		if in.Specialty != nil {
			t.Specialty = strings.TrimSpace(*in.Specialty)
		}
		if in.Cost != nil {
			t.Cost = clonePtr(in.Cost)
		}
		switch {
		case in.ClearProvider:
			t.ProviderID = nil
		case in.ProviderID != nil:
			t.ProviderID = clonePtr(in.ProviderID)
		}
		if in.TaskDate != nil {
			d := utils.DateOnly(*in.TaskDate)
			t.TaskDate = &d
		}
		updated = *t
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, internal_utils.NewNotFoundError("task", id)
		}
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityTask, id, events.OpUpdate)
	return &updated, nil
}

// SetTaskStatus is a manager's direct edit; it does not touch requests.
func (s *TaskService) SetTaskStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.TaskStatusType) (*models.MaintenanceTask, error) {
	if !status.Valid() {
		return nil, internal_utils.NewValidationError("status", "unknown task status")
	}
	if _, err := s.scope.RequireTask(ctx, actor, id); err != nil {
		return nil, err
	}
	var updated models.MaintenanceTask
	err := s.repos.Tasks.UpdateWithRetry(ctx, id, func(t *models.MaintenanceTask) error {
		if t.Status == status {
			updated = *t
			return errNoChange
		}
		t.Status = status
		updated = *t
		return nil
	})
	switch {
	case errors.Is(err, errNoChange):
		return &updated, nil
	case errors.Is(err, repositories.ErrNotFound):
		return nil, internal_utils.NewNotFoundError("task", id)
	case err != nil:
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityTask, id, events.OpUpdate)
	return &updated, nil
}

// Checklist drafts inspection steps for a task.
func (s *TaskService) Checklist(ctx context.Context, actor models.Actor, id uuid.UUID) (*dtos.ChecklistResponse, error) {
	t, err := s.scope.RequireTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	var component *models.Component
	if t.ComponentID != nil {
		if component, err = s.repos.Components.GetByID(ctx, *t.ComponentID); err != nil {
			return nil, err
		}
	}
	return &dtos.ChecklistResponse{TaskID: t.ID, Items: s.openai.DraftChecklist(ctx, t, component)}, nil
}
