package services

import (
	"errors"
	"testing"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	t.Run("Should persist a master with every generated instance", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")

		// ACT
		resp, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID: b.ID,
			Name:       "Filter change",
			Specialty:  "HVAC",
			Recurrence: models.RecurrenceMonthly,
			StartDate:  testhelpers.DayPtr(2024, 1, 31),
			EndDate:    testhelpers.DayPtr(2024, 5, 31),
		})

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Instances)
		assert.Equal(t, "Recurring task created with 4 scheduled instances", resp.Message)

		instances, err := env.TaskRepo.ListByRecurringTaskID(env.Ctx, resp.Task.ID)
		require.NoError(t, err)
		require.Len(t, instances, 4)
		seen := map[string]bool{}
		for _, inst := range instances {
			assert.Equal(t, models.RecurrenceOneTime, inst.Recurrence)
			assert.Equal(t, models.TaskStatusNew, inst.Status)
			assert.Nil(t, inst.StartDate)
			assert.NotEqual(t, resp.Task.ID, inst.ID)
			seen[inst.TaskDate.Format("2006-01-02")] = true
		}
		for _, d := range []string{"2024-01-31", "2024-03-02", "2024-04-02", "2024-05-02"} {
			assert.True(t, seen[d], d)
		}
	})

	t.Run("Should create a one-time task without instances", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")

		resp, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID: b.ID,
			Name:       "Replace bulb",
			Specialty:  "Electrical",
			Recurrence: models.RecurrenceOneTime,
			TaskDate:   testhelpers.DayPtr(2025, 7, 4),
		})

		require.NoError(t, err)
		assert.Equal(t, 0, resp.Instances)
		assert.Equal(t, "Task created", resp.Message)
		view, err := env.Tasks.GetTask(env.Ctx, env.Manager, resp.Task.ID)
		require.NoError(t, err)
		assert.True(t, view.FallsOnHoliday)
		assert.NotEmpty(t, view.HolidayName)
	})

	t.Run("Should reject a one-time task without a date", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")

		_, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID: b.ID,
			Name:       "Replace bulb",
			Specialty:  "Electrical",
			Recurrence: models.RecurrenceOneTime,
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "task_date", verr.Field)
		assert.Equal(t, 0, env.Store.Writes("tasks"))
	})

	t.Run("Should reject a component from another building", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		other := env.CreateTestBuilding(env.Manager, "Spruce")
		comp := env.CreateTestComponent(other.ID, nil, "Pump")
		before := env.Store.Writes("tasks")

		_, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID:  b.ID,
			ComponentID: &comp.ID,
			Name:        "Check pump",
			Specialty:   "Plumbing",
			Recurrence:  models.RecurrenceOneTime,
			TaskDate:    testhelpers.DayPtr(2025, 2, 2),
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "component_id", verr.Field)
		assert.Equal(t, before, env.Store.Writes("tasks"))
	})

	t.Run("Should reject an end date before the start date", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")

		_, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID: b.ID,
			Name:       "Sweep",
			Specialty:  "Cleaning",
			Recurrence: models.RecurrenceWeekly,
			StartDate:  testhelpers.DayPtr(2025, 2, 2),
			EndDate:    testhelpers.DayPtr(2025, 1, 2),
		})

		var verr *internal_utils.ValidationError
		assert.True(t, errors.As(err, &verr))
	})
}

func TestTaskUpdates(t *testing.T) {
	t.Run("Should not write when the status is unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		task := env.CreateTestTask(b.ID, "Sweep", "Cleaning", testhelpers.Day(2025, 2, 2))
		before := env.Store.Writes("tasks")

		got, err := env.Tasks.SetTaskStatus(env.Ctx, env.Manager, task.ID, models.TaskStatusNew)

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusNew, got.Status)
		assert.Equal(t, before, env.Store.Writes("tasks"))
	})

	t.Run("Should set any valid status directly", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		task := env.CreateTestTask(b.ID, "Sweep", "Cleaning", testhelpers.Day(2025, 2, 2))

		got, err := env.Tasks.SetTaskStatus(env.Ctx, env.Manager, task.ID, models.TaskStatusCompleted)

		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusCompleted, got.Status)
	})

	t.Run("Should refuse a new date on a recurring master", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		master := env.CreateTestMasterTask(b.ID, models.RecurrenceWeekly, testhelpers.Day(2025, 1, 1), testhelpers.Day(2025, 2, 1))

		_, err := env.Tasks.UpdateTask(env.Ctx, env.Manager, master.ID, dtos.UpdateTaskRequest{TaskDate: testhelpers.DayPtr(2025, 1, 5)})

		var verr *internal_utils.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("Should rename a task and clear its provider", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		task := env.CreateTestTask(b.ID, "Sweep", "Cleaning", testhelpers.Day(2025, 2, 2))

		got, err := env.Tasks.UpdateTask(env.Ctx, env.Manager, task.ID, dtos.UpdateTaskRequest{
			Name:          utils.StrPtr("  Sweep lobby "),
			ClearProvider: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "Sweep lobby", got.Name)
		assert.Nil(t, got.ProviderID)
	})
}

func TestListTasks(t *testing.T) {
	t.Run("Should list a master's instances in date order", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		resp, err := env.Tasks.CreateTask(env.Ctx, env.Manager, dtos.CreateTaskRequest{
			BuildingID: b.ID,
			Name:       "Sweep",
			Specialty:  "Cleaning",
			Recurrence: models.RecurrenceWeekly,
			StartDate:  testhelpers.DayPtr(2025, 1, 1),
			EndDate:    testhelpers.DayPtr(2025, 1, 29),
		})
		require.NoError(t, err)

		views, err := env.Tasks.ListTasks(env.Ctx, env.Manager, TaskFilter{MasterID: &resp.Task.ID})

		require.NoError(t, err)
		require.Len(t, views, 5)
		for i := 1; i < len(views); i++ {
			assert.True(t, views[i-1].TaskDate.Before(*views[i].TaskDate))
		}
	})

	t.Run("Should hide tasks of buildings outside scope", func(t *testing.T) {
		env := newTestEnv(t)
		other := env.CreateTestUser(models.RolePropertyManager, "other", &env.Admin)
		b := env.CreateTestBuilding(other, "Hidden")
		env.CreateTestTask(b.ID, "Secret", "Cleaning", testhelpers.Day(2025, 2, 2))

		views, err := env.Tasks.ListTasks(env.Ctx, env.Manager, TaskFilter{})

		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestChecklist(t *testing.T) {
	t.Run("Should draft a fallback checklist without an API key", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Willow")
		task := env.CreateTestTask(b.ID, "Inspect boiler", "HVAC", testhelpers.Day(2025, 2, 2))

		got, err := env.Tasks.Checklist(env.Ctx, env.Manager, task.ID)

		require.NoError(t, err)
		assert.Equal(t, task.ID, got.TaskID)
		assert.NotEmpty(t, got.Items)
	})
}
