package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedBuilding fills a building with one of everything a cascade removes.
func seedBuilding(env *testEnv, owner models.Actor) (*models.Building, *models.ServiceProvider) {
	b := env.CreateTestBuilding(owner, "Birch Towers")
	unit := env.CreateTestUnit(b.ID, "101")
	env.CreateTestUnit(b.ID, "102")
	comp := env.CreateTestComponent(b.ID, &unit.ID, "Boiler")
	p := env.CreateTestProvider(owner, "Heat Co", "HVAC")
	t1 := env.CreateTestTask(b.ID, "Service boiler", "HVAC", testhelpers.Day(2025, 1, 10))
	t2 := env.CreateTestTask(b.ID, "Bleed radiators", "HVAC", testhelpers.Day(2025, 1, 11))
	env.CreateTestRequest(t1, p.ID, models.RequestStatusSent)
	env.CreateTestRequest(t2, p.ID, models.RequestStatusAccepted)
	env.CreateTestExpense(b.ID, comp.ID, 2024, 1200)
	return b, p
}

func assertBuildingEmpty(t *testing.T, env *testEnv, buildingID uuid.UUID) {
	t.Helper()
	got, err := env.BuildingRepo.GetByID(env.Ctx, buildingID)
	require.NoError(t, err)
	assert.Nil(t, got)
	tasks, _ := env.TaskRepo.ListByBuildingID(env.Ctx, buildingID)
	assert.Empty(t, tasks)
	units, _ := env.UnitRepo.ListByBuildingID(env.Ctx, buildingID)
	assert.Empty(t, units)
	comps, _ := env.ComponentRepo.ListByBuildingID(env.Ctx, buildingID)
	assert.Empty(t, comps)
	exps, _ := env.ExpenseRepo.ListByBuildingID(env.Ctx, buildingID)
	assert.Empty(t, exps)
	reqs, _ := env.RequestRepo.List(env.Ctx)
	assert.Empty(t, reqs)
}

func TestDeleteBuilding(t *testing.T) {
	t.Run("Should remove every record under the building", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)
		keep := env.CreateTestBuilding(env.Manager, "Keeper")
		keepTask := env.CreateTestTask(keep.ID, "Stay", "HVAC", testhelpers.Day(2025, 1, 1))

		// ACT
		res, err := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		require.NoError(t, err)
		assertBuildingEmpty(t, env, b.ID)
		assert.Equal(t, 2, res.Removed[StepTasks])
		assert.Equal(t, 2, res.Removed[StepRequests])
		assert.Equal(t, 2, res.Removed[StepUnits])
		assert.Equal(t, `Building "Birch Towers" deleted; 2 tasks, 2 service requests, 1 component, 2 units and 1 expense also removed`, res.Message)

		still, _ := env.TaskRepo.GetByID(env.Ctx, keepTask.ID)
		assert.NotNil(t, still)
	})

	t.Run("Should report progress on a partial failure and finish on rerun", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)
		env.Store.FailNext("units.delete", errors.New("connection reset"))

		// ACT
		_, err := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		var partial *internal_utils.PartialCascadeFailure
		require.True(t, errors.As(err, &partial))
		assert.Equal(t, []string{StepTasks, StepRequests, StepComponents}, partial.CompletedSteps)
		assert.Equal(t, StepUnits, partial.FailedStep)

		stillThere, _ := env.BuildingRepo.GetByID(env.Ctx, b.ID)
		assert.NotNil(t, stillThere)

		// ACT
		res, err := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		require.NoError(t, err)
		assertBuildingEmpty(t, env, b.ID)
		assert.Equal(t, 2, res.Removed[StepUnits])
		assert.Equal(t, 0, res.Removed[StepTasks])
	})

	t.Run("Should collect requests of already deleted tasks when rerun after the requests step fails", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)
		env.Store.FailNext("requests.delete", errors.New("connection reset"))

		// ACT
		_, err := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		var partial *internal_utils.PartialCascadeFailure
		require.True(t, errors.As(err, &partial))
		assert.Equal(t, []string{StepTasks}, partial.CompletedSteps)
		assert.Equal(t, StepRequests, partial.FailedStep)
		left, _ := env.RequestRepo.List(env.Ctx)
		assert.Len(t, left, 2)

		// ACT
		res, err := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		require.NoError(t, err)
		assertBuildingEmpty(t, env, b.ID)
		assert.Equal(t, 0, res.Removed[StepTasks])
		assert.Equal(t, 2, res.Removed[StepRequests])
	})

	t.Run("Should converge when the tasks step fails part way", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)
		keep := env.CreateTestBuilding(env.Manager, "Keeper")
		keepTask := env.CreateTestTask(keep.ID, "Stay", "HVAC", testhelpers.Day(2025, 1, 1))
		p := env.CreateTestProvider(env.Manager, "Keeper Heat", "HVAC")
		keepReq := env.CreateTestRequest(keepTask, p.ID, models.RequestStatusSent)
		env.Store.FailNext("tasks.delete", errors.New("timeout"))

		// ACT
		_, first := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)
		_, second := env.Cascade.DeleteBuilding(env.Ctx, env.Manager, b.ID)

		// ASSERT
		var partial *internal_utils.PartialCascadeFailure
		require.True(t, errors.As(first, &partial))
		assert.Equal(t, StepTasks, partial.FailedStep)
		require.NoError(t, second)
		tasks, _ := env.TaskRepo.ListByBuildingID(env.Ctx, b.ID)
		assert.Empty(t, tasks)
		reqs, _ := env.RequestRepo.List(env.Ctx)
		require.Len(t, reqs, 1)
		assert.Equal(t, keepReq.ID, reqs[0].ID)
	})

	t.Run("Should report a building outside the manager's scope as not found", func(t *testing.T) {
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)
		other := env.CreateTestUser(models.RolePropertyManager, "other", &env.Admin)

		_, err := env.Cascade.DeleteBuilding(env.Ctx, other, b.ID)

		var nf *internal_utils.NotFoundError
		assert.True(t, errors.As(err, &nf))
		still, _ := env.BuildingRepo.GetByID(env.Ctx, b.ID)
		assert.NotNil(t, still)
	})

	t.Run("Should record the delete in the audit log for admins", func(t *testing.T) {
		env := newTestEnv(t)
		b, _ := seedBuilding(env, env.Manager)

		_, err := env.Cascade.DeleteBuilding(env.Ctx, env.Admin, b.ID)
		require.NoError(t, err)

		logs, err := env.AuditRepo.ListByTarget(env.Ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, models.AuditDelete, logs[0].Action)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("Should delete a one-time task with its requests", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Pine")
		task := env.CreateTestTask(b.ID, "Fix door", "Carpentry", testhelpers.Day(2025, 3, 3))
		p := env.CreateTestProvider(env.Manager, "Wood Co", "Carpentry")
		env.CreateTestRequest(task, p.ID, models.RequestStatusSent)

		res, err := env.Cascade.DeleteTask(env.Ctx, env.Manager, task.ID)

		require.NoError(t, err)
		assert.Equal(t, "Task deleted; 1 related service request also removed", res.Message)
		reqs, _ := env.RequestRepo.ListByTaskID(env.Ctx, task.ID)
		assert.Empty(t, reqs)
	})

	t.Run("Should delete a master with all its instances", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Pine")
		master := env.CreateTestMasterTask(b.ID, models.RecurrenceMonthly, testhelpers.Day(2025, 1, 1), testhelpers.Day(2025, 3, 1))
		instances := ExpandRecurringTask(*master)
		require.Len(t, instances, 3)
		for i := range instances {
			instances[i].ID = uuid.New()
			require.NoError(t, env.TaskRepo.Create(env.Ctx, &instances[i]))
		}
		p := env.CreateTestProvider(env.Manager, "Heat Co", "HVAC")
		env.CreateTestRequest(&instances[0], p.ID, models.RequestStatusSent)

		// ACT
		res, err := env.Cascade.DeleteTask(env.Ctx, env.Manager, master.ID)

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, "Recurring task and 3 instances deleted; 1 related service request also removed", res.Message)
		left, _ := env.TaskRepo.ListByBuildingID(env.Ctx, b.ID)
		assert.Empty(t, left)
	})
}

func TestDeleteProvider(t *testing.T) {
	t.Run("Should remove the provider and its requests", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Cedar")
		task := env.CreateTestTask(b.ID, "Roof check", "Roofing", testhelpers.Day(2025, 5, 5))
		p := env.CreateTestProvider(env.Manager, "Top Roofs", "Roofing")
		env.CreateTestRequest(task, p.ID, models.RequestStatusSent)

		res, err := env.Cascade.DeleteProvider(env.Ctx, env.Manager, p.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Removed[StepRequests])
		gone, _ := env.ProviderRepo.GetByID(env.Ctx, p.ID)
		assert.Nil(t, gone)
	})

	t.Run("Should refuse a manager who did not create the provider", func(t *testing.T) {
		env := newTestEnv(t)
		p := env.CreateTestProvider(env.Admin, "Top Roofs", "Roofing")

		_, err := env.Cascade.DeleteProvider(env.Ctx, env.Manager, p.ID)

		var aerr *internal_utils.AuthorizationError
		assert.True(t, errors.As(err, &aerr))
		still, _ := env.ProviderRepo.GetByID(env.Ctx, p.ID)
		assert.NotNil(t, still)
	})

	t.Run("Should report another manager's provider as not found", func(t *testing.T) {
		env := newTestEnv(t)
		peer := env.CreateTestUser(models.RolePropertyManager, "peer", &env.Admin)
		p := env.CreateTestProvider(peer, "Peer Roofs", "Roofing")

		_, err := env.Cascade.DeleteProvider(env.Ctx, env.Manager, p.ID)

		var nf *internal_utils.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "service provider", nf.Entity)
		still, _ := env.ProviderRepo.GetByID(env.Ctx, p.ID)
		assert.NotNil(t, still)
	})
}

func TestDeleteUnitAndComponent(t *testing.T) {
	t.Run("Should refuse to delete a unit a component points at", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Ash")
		unit := env.CreateTestUnit(b.ID, "3B")
		comp := env.CreateTestComponent(b.ID, &unit.ID, "Water heater")

		// ACT
		_, err := env.Cascade.DeleteUnit(env.Ctx, env.Manager, unit.ID)

		// ASSERT
		var conflict *internal_utils.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Len(t, conflict.Blocking, 1)
		assert.Equal(t, comp.ID, conflict.Blocking[0].ID)
		still, _ := env.UnitRepo.GetByID(env.Ctx, unit.ID)
		assert.NotNil(t, still)
	})

	t.Run("Should delete an unreferenced unit", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Ash")
		unit := env.CreateTestUnit(b.ID, "3B")

		res, err := env.Cascade.DeleteUnit(env.Ctx, env.Manager, unit.ID)

		require.NoError(t, err)
		assert.Equal(t, "Unit 3B deleted", res.Message)
	})

	t.Run("Should refuse to delete a component with expenses", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Ash")
		comp := env.CreateTestComponent(b.ID, nil, "Roof")
		env.CreateTestExpense(b.ID, comp.ID, 2023, 900)

		_, err := env.Cascade.DeleteComponent(env.Ctx, env.Manager, comp.ID)

		var conflict *internal_utils.ConflictError
		assert.True(t, errors.As(err, &conflict))
	})
}
