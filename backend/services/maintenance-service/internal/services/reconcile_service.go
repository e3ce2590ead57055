package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// SweepResult counts the orphans removed by one sweep.
type SweepResult struct {
	Requests   int `json:"requests"`
	Tasks      int `json:"tasks"`
	Units      int `json:"units"`
	Components int `json:"components"`
	Expenses   int `json:"expenses"`
}

// ReconcileService finishes cascades that stopped part way.
type ReconcileService struct {
	scope *ScopeService
	repos Repositories
	bus   events.ChangePublisher
}

func NewReconcileService(repos Repositories, scope *ScopeService, bus events.ChangePublisher) *ReconcileService {
	return &ReconcileService{repos: repos, scope: scope, bus: bus}
}

/*
RunOrphanSweep deletes records whose parent is gone: tasks, units,
components and expenses of missing buildings, then requests of missing
tasks. Generated instances of a missing master are removed too.
*/
func (s *ReconcileService) RunOrphanSweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	snap, err := s.scope.Load(ctx)
	if err != nil {
		return res, err
	}

	buildings := BuildingSet{}
	for _, b := range snap.Buildings {
		buildings[b.ID] = struct{}{}
	}
	tasks := map[uuid.UUID]*models.MaintenanceTask{}
	for _, t := range snap.Tasks {
		tasks[t.ID] = t
	}

	del := func(entity string, id uuid.UUID, fn func(context.Context, uuid.UUID) error, n *int) error {
		if err := fn(ctx, id); err != nil {
			return err
		}
		*n++
		events.Emit(ctx, s.bus, entity, id, events.OpDelete)
		return nil
	}

	for _, t := range snap.Tasks {
		orphan := !buildings.Has(t.BuildingID)
		if t.RecurringTaskID != nil {
			if _, ok := tasks[*t.RecurringTaskID]; !ok {
				orphan = true
			}
		}
		if !orphan {
			continue
		}
		if err := del(events.EntityTask, t.ID, s.repos.Tasks.Delete, &res.Tasks); err != nil {
			return res, err
		}
		delete(tasks, t.ID)
	}
	for _, c := range snap.Components {
		if !buildings.Has(c.BuildingID) {
			if err := del(events.EntityComponent, c.ID, s.repos.Components.Delete, &res.Components); err != nil {
				return res, err
			}
		}
	}
	for _, u := range snap.Units {
		if !buildings.Has(u.BuildingID) {
			if err := del(events.EntityUnit, u.ID, s.repos.Units.Delete, &res.Units); err != nil {
				return res, err
			}
		}
	}
	for _, e := range snap.Expenses {
		if !buildings.Has(e.BuildingID) {
			if err := del(events.EntityExpense, e.ID, s.repos.Expenses.Delete, &res.Expenses); err != nil {
				return res, err
			}
		}
	}
	for _, r := range snap.Requests {
		if _, ok := tasks[r.TaskID]; !ok {
			if err := del(events.EntityRequest, r.ID, s.repos.Requests.Delete, &res.Requests); err != nil {
				return res, err
			}
		}
	}

	if res != (SweepResult{}) {
		utils.Logger.WithFields(logrus.Fields{
			"requests":   res.Requests,
			"tasks":      res.Tasks,
			"units":      res.Units,
			"components": res.Components,
			"expenses":   res.Expenses,
		}).Info("orphan sweep removed leftovers")
	}
	return res, nil
}
