package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.RequestStatusType
		want     bool
	}{
		{models.RequestStatusSent, models.RequestStatusAccepted, true},
		{models.RequestStatusSent, models.RequestStatusRefused, true},
		{models.RequestStatusSent, models.RequestStatusCompleted, false},
		{models.RequestStatusAccepted, models.RequestStatusInProgress, true},
		{models.RequestStatusAccepted, models.RequestStatusCompleted, true},
		{models.RequestStatusAccepted, models.RequestStatusRefused, false},
		{models.RequestStatusInProgress, models.RequestStatusCompleted, true},
		{models.RequestStatusInProgress, models.RequestStatusAccepted, false},
		{models.RequestStatusRefused, models.RequestStatusSent, false},
		{models.RequestStatusCompleted, models.RequestStatusInProgress, false},
		{models.RequestStatusSent, models.RequestStatusSent, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestLifecycle(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *models.MaintenanceTask, *models.ServiceProvider, models.Actor) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Maple Court")
		task := env.CreateTestTask(b.ID, "Fix leak", "Plumbing", testhelpers.Day(2025, 6, 2))
		p, login := env.providerLogin(env.Manager, "Pipes Inc", "Plumbing")
		return env, task, p, login
	}

	t.Run("Should create a request in Sent and move the task to Sent", func(t *testing.T) {
		// ARRANGE
		env, task, p, login := setup(t)

		// ACT
		req, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{
			TaskID:     task.ID,
			ProviderID: p.ID,
		})

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusSent, req.Status)
		assert.Equal(t, "Plumbing", req.Specialty)
		require.Len(t, req.StatusHistory, 1)
		assert.Equal(t, models.RequestStatusSent, req.StatusHistory[0].Status)
		assert.Equal(t, env.Manager.DisplayName, req.StatusHistory[0].ChangedBy)

		stored, err := env.TaskRepo.GetByID(env.Ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusSent, stored.Status)
		require.NotNil(t, stored.ProviderID)
		assert.Equal(t, p.ID, *stored.ProviderID)

		notes, err := env.NotificationRepo.ListByUserID(env.Ctx, login.ID)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	})

	t.Run("Should put the task on hold with one Accepted entry when accepted", func(t *testing.T) {
		// ARRANGE
		env, task, p, login := setup(t)
		req, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: p.ID})
		require.NoError(t, err)

		// ACT
		updated, err := env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusAccepted)

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusAccepted, updated.Status)
		accepted := 0
		for _, h := range updated.StatusHistory {
			if h.Status == models.RequestStatusAccepted {
				accepted++
			}
		}
		assert.Equal(t, 1, accepted)
		assert.Equal(t, updated.Status, updated.StatusHistory[len(updated.StatusHistory)-1].Status)

		stored, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.Equal(t, models.TaskStatusOnHold, stored.Status)

		ownerNotes, _ := env.NotificationRepo.ListByUserID(env.Ctx, env.Manager.ID)
		require.Len(t, ownerNotes, 1)
		assert.Equal(t, "Service request accepted", ownerNotes[0].Title)
	})

	t.Run("Should reset the task on refusal and resend with a new request", func(t *testing.T) {
		// ARRANGE
		env, task, p, login := setup(t)
		first, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: p.ID})
		require.NoError(t, err)

		// ACT
		_, err = env.Requests.TransitionRequest(env.Ctx, login, first.ID, models.RequestStatusRefused)
		require.NoError(t, err)
		afterRefuse, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)

		other := env.CreateTestProvider(env.Admin, "Drain Co", "Plumbing")
		_, err = env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: other.ID})
		require.NoError(t, err)
		afterResend, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)

		// ASSERT
		assert.Equal(t, models.TaskStatusNew, afterRefuse.Status)
		assert.Equal(t, models.TaskStatusSent, afterResend.Status)
		reqs, _ := env.RequestRepo.ListByTaskID(env.Ctx, task.ID)
		assert.Len(t, reqs, 2)
	})

	t.Run("Should complete the task through InProgress", func(t *testing.T) {
		env, task, p, login := setup(t)
		req, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: p.ID})
		require.NoError(t, err)

		for _, s := range []models.RequestStatusType{models.RequestStatusAccepted, models.RequestStatusInProgress, models.RequestStatusCompleted} {
			_, err = env.Requests.TransitionRequest(env.Ctx, login, req.ID, s)
			require.NoError(t, err)
		}

		stored, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.Equal(t, models.TaskStatusCompleted, stored.Status)
		final, _ := env.RequestRepo.GetByID(env.Ctx, req.ID)
		assert.Len(t, final.StatusHistory, 4)
	})

	t.Run("Should not write the task when it already has the target status", func(t *testing.T) {
		// ARRANGE
		env, task, p, _ := setup(t)
		require.NoError(t, env.TaskRepo.UpdateWithRetry(env.Ctx, task.ID, func(mt *models.MaintenanceTask) error {
			mt.Status = models.TaskStatusOnHold
			mt.ProviderID = &p.ID
			return nil
		}))
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusSent)
		before := env.Store.Writes("tasks")

		// ACT
		_, err := env.Requests.TransitionRequest(env.Ctx, env.Manager, req.ID, models.RequestStatusAccepted)

		// ASSERT
		require.NoError(t, err)
		assert.Equal(t, before, env.Store.Writes("tasks"))
	})

	t.Run("Should not write the task for InProgress", func(t *testing.T) {
		env, task, p, login := setup(t)
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusAccepted)
		before := env.Store.Writes("tasks")

		_, err := env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusInProgress)

		require.NoError(t, err)
		assert.Equal(t, before, env.Store.Writes("tasks"))
	})

	t.Run("Should reject transitions out of terminal states", func(t *testing.T) {
		env, task, p, login := setup(t)
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusRefused)

		_, err := env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusAccepted)

		assert.ErrorIs(t, err, internal_utils.ErrInvalidTransition)
		stored, _ := env.RequestRepo.GetByID(env.Ctx, req.ID)
		assert.Len(t, stored.StatusHistory, 1)
	})

	t.Run("Should succeed and skip sync when the task is gone", func(t *testing.T) {
		env, task, p, login := setup(t)
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusSent)
		require.NoError(t, env.TaskRepo.Delete(env.Ctx, task.ID))

		updated, err := env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusAccepted, updated.Status)
	})

	t.Run("Should return a task write failure to the caller", func(t *testing.T) {
		// ARRANGE
		env, task, p, _ := setup(t)
		boom := errors.New("disk full")
		env.Store.FailNext("tasks.update", boom)

		// ACT
		_, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: p.ID})

		// ASSERT
		assert.ErrorIs(t, err, boom)
		stored, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.NotEqual(t, models.TaskStatusSent, stored.Status)
		assert.Nil(t, stored.ProviderID)
	})

	t.Run("Should return a task write failure from a transition", func(t *testing.T) {
		// ARRANGE
		env, task, p, login := setup(t)
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusSent)
		boom := errors.New("connection reset")
		env.Store.FailNext("tasks.update", boom)

		// ACT
		_, err := env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusAccepted)

		// ASSERT
		assert.ErrorIs(t, err, boom)
		stored, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.NotEqual(t, models.TaskStatusOnHold, stored.Status)
	})

	t.Run("Should reject a specialty matching neither task nor provider", func(t *testing.T) {
		env, task, p, _ := setup(t)

		_, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{
			TaskID:     task.ID,
			ProviderID: p.ID,
			Specialty:  "Roofing",
		})

		var verr *internal_utils.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "specialty", verr.Field)
		assert.Equal(t, 0, env.Store.Writes("requests"))
	})

	t.Run("Should hide another provider's request from a provider", func(t *testing.T) {
		env, task, p, _ := setup(t)
		_, otherLogin := env.providerLogin(env.Manager, "Other Pipes", "Plumbing")
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusSent)

		_, err := env.Requests.TransitionRequest(env.Ctx, otherLogin, req.ID, models.RequestStatusAccepted)

		var nf *internal_utils.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "service request", nf.Entity)
		got, _ := env.RequestRepo.GetByID(env.Ctx, req.ID)
		assert.Equal(t, models.RequestStatusSent, got.Status)
	})

	t.Run("Should report a task outside the manager's scope as not found", func(t *testing.T) {
		env, task, p, _ := setup(t)
		stranger := env.CreateTestUser(models.RolePropertyManager, "stranger", &env.Admin)

		_, err := env.Requests.CreateRequest(context.Background(), stranger, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: p.ID})

		var nf *internal_utils.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "task", nf.Entity)
		assert.Equal(t, 0, env.Store.Writes("requests"))
	})

	t.Run("Should report a provider outside the manager's scope as not found", func(t *testing.T) {
		env, task, _, _ := setup(t)
		peer := env.CreateTestUser(models.RolePropertyManager, "peer", &env.Admin)
		hidden, _ := env.providerLogin(peer, "Peer Pipes", "Plumbing")

		_, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: hidden.ID})

		var nf *internal_utils.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "service provider", nf.Entity)
	})

	t.Run("Should report a missing request as not found", func(t *testing.T) {
		env, _, _, login := setup(t)

		_, err := env.Requests.TransitionRequest(env.Ctx, login, uuid.New(), models.RequestStatusAccepted)

		var nf *internal_utils.NotFoundError
		assert.True(t, errors.As(err, &nf))
	})
}

func TestRequestUpdates(t *testing.T) {
	t.Run("Should reassign to a provider with a matching specialty", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Oak")
		task := env.CreateTestTask(b.ID, "Boiler", "HVAC", testhelpers.Day(2025, 2, 3))
		first := env.CreateTestProvider(env.Manager, "Heat A", "HVAC")
		second := env.CreateTestProvider(env.Manager, "Heat B", "HVAC")
		req, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: first.ID})
		require.NoError(t, err)

		cost := 250.0
		updated, err := env.Requests.UpdateRequest(env.Ctx, env.Manager, req.ID, dtos.UpdateServiceRequestRequest{
			ProviderID: &second.ID,
			Cost:       &cost,
		})

		require.NoError(t, err)
		assert.Equal(t, second.ID, updated.ProviderID)
		assert.Equal(t, 250.0, *updated.Cost)
		stored, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.Equal(t, second.ID, *stored.ProviderID)
	})

	t.Run("Should refuse to reassign a request the provider already accepted", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Oak")
		task := env.CreateTestTask(b.ID, "Boiler", "HVAC", testhelpers.Day(2025, 2, 3))
		first, login := env.providerLogin(env.Manager, "Heat A", "HVAC")
		second := env.CreateTestProvider(env.Manager, "Heat B", "HVAC")
		req, err := env.Requests.CreateRequest(env.Ctx, env.Manager, dtos.CreateServiceRequestRequest{TaskID: task.ID, ProviderID: first.ID})
		require.NoError(t, err)
		_, err = env.Requests.TransitionRequest(env.Ctx, login, req.ID, models.RequestStatusAccepted)
		require.NoError(t, err)
		taskWrites := env.Store.Writes("tasks")

		// ACT
		_, err = env.Requests.UpdateRequest(env.Ctx, env.Manager, req.ID, dtos.UpdateServiceRequestRequest{ProviderID: &second.ID})

		// ASSERT
		assert.ErrorIs(t, err, internal_utils.ErrInvalidTransition)
		assert.Equal(t, http.StatusConflict, internal_utils.ToAppError(err).StatusCode)
		stored, _ := env.RequestRepo.GetByID(env.Ctx, req.ID)
		assert.Equal(t, first.ID, stored.ProviderID)
		assert.Equal(t, models.RequestStatusAccepted, stored.Status)
		storedTask, _ := env.TaskRepo.GetByID(env.Ctx, task.ID)
		assert.Equal(t, models.TaskStatusOnHold, storedTask.Status)
		assert.Equal(t, taskWrites, env.Store.Writes("tasks"))
	})

	t.Run("Should still edit other fields of an accepted request", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Oak")
		task := env.CreateTestTask(b.ID, "Boiler", "HVAC", testhelpers.Day(2025, 2, 3))
		p := env.CreateTestProvider(env.Manager, "Heat A", "HVAC")
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusAccepted)
		notes := "bring the spare valve"

		updated, err := env.Requests.UpdateRequest(env.Ctx, env.Manager, req.ID, dtos.UpdateServiceRequestRequest{
			ProviderID: &p.ID,
			Notes:      &notes,
		})

		require.NoError(t, err)
		assert.Equal(t, notes, *updated.Notes)
		assert.Equal(t, p.ID, updated.ProviderID)
	})

	t.Run("Should reject edits of a completed request", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Oak")
		task := env.CreateTestTask(b.ID, "Boiler", "HVAC", testhelpers.Day(2025, 2, 3))
		p := env.CreateTestProvider(env.Manager, "Heat A", "HVAC")
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusCompleted)
		notes := "late"

		_, err := env.Requests.UpdateRequest(env.Ctx, env.Manager, req.ID, dtos.UpdateServiceRequestRequest{Notes: &notes})

		assert.ErrorIs(t, err, internal_utils.ErrTerminalRequest)
	})

	t.Run("Should append comments in order", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.CreateTestBuilding(env.Manager, "Oak")
		task := env.CreateTestTask(b.ID, "Boiler", "HVAC", testhelpers.Day(2025, 2, 3))
		p, login := env.providerLogin(env.Manager, "Heat A", "HVAC")
		req := env.CreateTestRequest(task, p.ID, models.RequestStatusSent)

		_, err := env.Requests.AddComment(env.Ctx, env.Manager, req.ID, "Gate code 1234")
		require.NoError(t, err)
		_, err = env.Requests.AddComment(env.Ctx, login, req.ID, "Coming Tuesday")
		require.NoError(t, err)

		stored, _ := env.RequestRepo.GetByID(env.Ctx, req.ID)
		require.Len(t, stored.Comments, 2)
		assert.Equal(t, "Gate code 1234", stored.Comments[0].Body)
		assert.Equal(t, login.DisplayName, stored.Comments[1].AuthorName)
	})
}
