package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// Cascade step names, reported back on partial failure.
const (
	StepTasks      = "tasks"
	StepRequests   = "requests"
	StepComponents = "components"
	StepUnits      = "units"
	StepExpenses   = "expenses"
	StepBuilding   = "building"
	StepProvider   = "provider"
	StepTask       = "task"
)

// CascadeResult confirms a delete and counts what went with it.
type CascadeResult struct {
	Message string         `json:"message"`
	Removed map[string]int `json:"removed"`
}

// cascadeStep deletes one kind of record. Deleting an id that is already
// gone is a no-op, so a failed cascade can simply be run again.
type cascadeStep struct {
	name string
	run  func(ctx context.Context) (int, error)
}

func runCascade(ctx context.Context, operation string, steps []cascadeStep) (map[string]int, error) {
	removed := make(map[string]int, len(steps))
	completed := make([]string, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return removed, &internal_utils.PartialCascadeFailure{Operation: operation, CompletedSteps: completed, FailedStep: step.name, Err: err}
		}
		n, err := step.run(ctx)
		removed[step.name] += n
		if err != nil {
			utils.Logger.WithError(err).WithFields(logrus.Fields{
				"operation": operation,
				"step":      step.name,
				"completed": completed,
			}).Error("cascade stopped")
			return removed, &internal_utils.PartialCascadeFailure{Operation: operation, CompletedSteps: completed, FailedStep: step.name, Err: err}
		}
		completed = append(completed, step.name)
	}
	return removed, nil
}

func deleteEach(ids []uuid.UUID, del func(context.Context, uuid.UUID) error) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		n := 0
		for _, id := range ids {
			if err := del(ctx, id); err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

type CascadeService struct {
	repos Repositories
	scope *ScopeService
	audit *AuditService
	bus   events.ChangePublisher
}

func NewCascadeService(repos Repositories, scope *ScopeService, audit *AuditService, bus events.ChangePublisher) *CascadeService {
	return &CascadeService{repos: repos, scope: scope, audit: audit, bus: bus}
}

func (s *CascadeService) emitAll(ctx context.Context, entity string, ids []uuid.UUID) {
	for _, id := range ids {
		events.Emit(ctx, s.bus, entity, id, events.OpDelete)
	}
}

// requestIDsForTasks collects the requests of the given tasks.
func (s *CascadeService) requestIDsForTasks(ctx context.Context, taskIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, tid := range taskIDs {
		reqs, err := s.repos.Requests.ListByTaskID(ctx, tid)
		if err != nil {
			return nil, err
		}
		for _, r := range reqs {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// orphanRequestIDs lists requests whose task no longer exists. A building
// cascade that stopped after its tasks step leaves exactly these behind.
func (s *CascadeService) orphanRequestIDs(ctx context.Context) ([]uuid.UUID, error) {
	tasks, err := s.repos.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[uuid.UUID]struct{}, len(tasks))
	for _, t := range tasks {
		live[t.ID] = struct{}{}
	}
	reqs, err := s.repos.Requests.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, r := range reqs {
		if _, ok := live[r.TaskID]; !ok {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

/*
DeleteBuilding removes a building and everything under it, in order:
tasks, their requests, components, units, expenses, then the building.
Steps run one after another with no transaction. Reads happen up front so
a rerun after a partial failure finds whatever is left; the requests step
also takes requests already cut off from their task by an earlier run.
*/
func (s *CascadeService) DeleteBuilding(ctx context.Context, actor models.Actor, id uuid.UUID) (*CascadeResult, error) {
	building, err := s.scope.RequireBuilding(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repos.Tasks.ListByBuildingID(ctx, id)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	requestIDs, err := s.requestIDsForTasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	orphans, err := s.orphanRequestIDs(ctx)
	if err != nil {
		return nil, err
	}
	requestIDs = append(requestIDs, orphans...)
	components, err := s.repos.Components.ListByBuildingID(ctx, id)
	if err != nil {
		return nil, err
	}
	componentIDs := make([]uuid.UUID, 0, len(components))
	for _, c := range components {
		componentIDs = append(componentIDs, c.ID)
	}
	units, err := s.repos.Units.ListByBuildingID(ctx, id)
	if err != nil {
		return nil, err
	}
	unitIDs := make([]uuid.UUID, 0, len(units))
	for _, u := range units {
		unitIDs = append(unitIDs, u.ID)
	}
	expenses, err := s.repos.Expenses.ListByBuildingID(ctx, id)
	if err != nil {
		return nil, err
	}
	expenseIDs := make([]uuid.UUID, 0, len(expenses))
	for _, e := range expenses {
		expenseIDs = append(expenseIDs, e.ID)
	}

	removed, err := runCascade(ctx, "delete building", []cascadeStep{
		{StepTasks, deleteEach(taskIDs, s.repos.Tasks.Delete)},
		{StepRequests, deleteEach(requestIDs, s.repos.Requests.Delete)},
		{StepComponents, deleteEach(componentIDs, s.repos.Components.Delete)},
		{StepUnits, deleteEach(unitIDs, s.repos.Units.Delete)},
		{StepExpenses, deleteEach(expenseIDs, s.repos.Expenses.Delete)},
		{StepBuilding, deleteEach([]uuid.UUID{id}, s.repos.Buildings.Delete)},
	})
	if err != nil {
		return nil, err
	}
	s.emitAll(ctx, events.EntityTask, taskIDs)
	s.emitAll(ctx, events.EntityRequest, requestIDs)
	s.emitAll(ctx, events.EntityComponent, componentIDs)
	s.emitAll(ctx, events.EntityUnit, unitIDs)
	s.emitAll(ctx, events.EntityExpense, expenseIDs)
	events.Emit(ctx, s.bus, events.EntityBuilding, id, events.OpDelete)

	delete(removed, StepBuilding)
	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetBuilding, id, map[string]any{
		"name":    building.Name,
		"removed": removed,
	})

	var parts []string
	for _, p := range []struct {
		step             string
		singular, plural string
	}{
		{StepTasks, "task", "tasks"},
		{StepRequests, "service request", "service requests"},
		{StepComponents, "component", "components"},
		{StepUnits, "unit", "units"},
		{StepExpenses, "expense", "expenses"},
	} {
		if n := removed[p.step]; n > 0 {
			parts = append(parts, plural(n, p.singular, p.plural))
		}
	}
	msg := fmt.Sprintf("Building %q deleted", building.Name)
	if len(parts) > 0 {
		msg += "; " + joinList(parts) + " also removed"
	}
	return &CascadeResult{Message: msg, Removed: removed}, nil
}

func joinList(parts []string) string {
	if len(parts) <= 1 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

/*
DeleteTask removes a task and its service requests. Deleting a recurring
master takes every generated instance (and their requests) with it.
*/
func (s *CascadeService) DeleteTask(ctx context.Context, actor models.Actor, id uuid.UUID) (*CascadeResult, error) {
	task, err := s.scope.RequireTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	taskIDs := []uuid.UUID{}
	if task.IsMaster() {
		instances, err := s.repos.Tasks.ListByRecurringTaskID(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, inst := range instances {
			taskIDs = append(taskIDs, inst.ID)
		}
	}
	// master last, so a rerun still finds it and its leftovers
	taskIDs = append(taskIDs, id)

	requestIDs, err := s.requestIDsForTasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	removed, err := runCascade(ctx, "delete task", []cascadeStep{
		{StepRequests, deleteEach(requestIDs, s.repos.Requests.Delete)},
		{StepTasks, deleteEach(taskIDs, s.repos.Tasks.Delete)},
	})
	if err != nil {
		return nil, err
	}
	s.emitAll(ctx, events.EntityRequest, requestIDs)
	s.emitAll(ctx, events.EntityTask, taskIDs)

	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetMaintenanceTask, id, map[string]any{
		"name":    task.Name,
		"removed": removed,
	})

	msg := "Task deleted"
	if task.IsMaster() {
		msg = fmt.Sprintf("Recurring task and %s deleted", plural(len(taskIDs)-1, "instance", "instances"))
	}
	if n := removed[StepRequests]; n > 0 {
		msg += fmt.Sprintf("; %s also removed", plural(n, "related service request", "related service requests"))
	}
	return &CascadeResult{Message: msg, Removed: removed}, nil
}

// DeleteProvider removes a provider and every request addressed to it.
// Only its creator, an Admin or a SuperAdmin may do this.
func (s *CascadeService) DeleteProvider(ctx context.Context, actor models.Actor, id uuid.UUID) (*CascadeResult, error) {
	p, err := s.repos.Providers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, internal_utils.NewNotFoundError("service provider", id)
	}
	visible, err := s.scope.ProviderVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, internal_utils.NewNotFoundError("service provider", id)
	}
	if p.CreatedBy != actor.ID && actor.Role != models.RoleAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, internal_utils.NewAuthorizationError("delete service provider %s", p.Name)
	}

	reqs, err := s.repos.Requests.ListByProviderID(ctx, id)
	if err != nil {
		return nil, err
	}
	requestIDs := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		requestIDs = append(requestIDs, r.ID)
	}

	removed, err := runCascade(ctx, "delete provider", []cascadeStep{
		{StepRequests, deleteEach(requestIDs, s.repos.Requests.Delete)},
		{StepProvider, deleteEach([]uuid.UUID{id}, s.repos.Providers.Delete)},
	})
	if err != nil {
		return nil, err
	}
	s.emitAll(ctx, events.EntityRequest, requestIDs)
	events.Emit(ctx, s.bus, events.EntityProvider, id, events.OpDelete)

	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetServiceProvider, id, map[string]any{
		"name":     p.Name,
		"requests": removed[StepRequests],
	})

	msg := "Service provider deleted"
	if n := removed[StepRequests]; n > 0 {
		msg += fmt.Sprintf("; %s also removed", plural(n, "related service request", "related service requests"))
	}
	return &CascadeResult{Message: msg, Removed: map[string]int{StepRequests: removed[StepRequests]}}, nil
}

// DeleteUnit refuses while a task or component still points at the unit.
func (s *CascadeService) DeleteUnit(ctx context.Context, actor models.Actor, id uuid.UUID) (*CascadeResult, error) {
	unit, err := s.repos.Units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, internal_utils.NewNotFoundError("unit", id)
	}
	if _, err := s.scope.RequireBuilding(ctx, actor, unit.BuildingID); err != nil {
		return nil, err
	}

	var blocking []internal_utils.Reference
	tasks, err := s.repos.Tasks.ListByUnitID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		blocking = append(blocking, internal_utils.Reference{Type: "task", ID: t.ID, Name: t.Name})
	}
	components, err := s.repos.Components.ListByUnitID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		blocking = append(blocking, internal_utils.Reference{Type: "component", ID: c.ID, Name: c.Name})
	}
	if len(blocking) > 0 {
		return nil, &internal_utils.ConflictError{
			Message:  fmt.Sprintf("Unit %s is still referenced by %s", unit.UnitNumber, plural(len(blocking), "record", "records")),
			Blocking: blocking,
		}
	}

	if err := s.repos.Units.Delete(ctx, id); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityUnit, id, events.OpDelete)
	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetUnit, id, map[string]any{"unit_number": unit.UnitNumber})
	return &CascadeResult{Message: fmt.Sprintf("Unit %s deleted", unit.UnitNumber), Removed: map[string]int{}}, nil
}

// DeleteComponent refuses while tasks or expenses still point at it.
func (s *CascadeService) DeleteComponent(ctx context.Context, actor models.Actor, id uuid.UUID) (*CascadeResult, error) {
	c, err := s.repos.Components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, internal_utils.NewNotFoundError("component", id)
	}
	if _, err := s.scope.RequireBuilding(ctx, actor, c.BuildingID); err != nil {
		return nil, err
	}

	var blocking []internal_utils.Reference
	tasks, err := s.repos.Tasks.ListByComponentID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		blocking = append(blocking, internal_utils.Reference{Type: "task", ID: t.ID, Name: t.Name})
	}
	expenses, err := s.repos.Expenses.ListByBuildingID(ctx, c.BuildingID)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if e.ComponentID == id {
			blocking = append(blocking, internal_utils.Reference{Type: "expense", ID: e.ID, Name: fmt.Sprintf("%d", e.Year)})
		}
	}
	if len(blocking) > 0 {
		return nil, &internal_utils.ConflictError{
			Message:  fmt.Sprintf("Component %s is still referenced by %s", c.Name, plural(len(blocking), "record", "records")),
			Blocking: blocking,
		}
	}

	if err := s.repos.Components.Delete(ctx, id); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.bus, events.EntityComponent, id, events.OpDelete)
	s.audit.Record(ctx, actor, models.AuditDelete, models.TargetComponent, id, map[string]any{"name": c.Name})
	return &CascadeResult{Message: fmt.Sprintf("Component %s deleted", c.Name), Removed: map[string]int{}}, nil
}
