package services

import (
	"errors"
	"testing"

	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	t.Run("Should mark all of the owner's notifications read", func(t *testing.T) {
		env := newTestEnv(t)
		env.Notes.Notify(env.Ctx, env.Manager.ID, "one", "first", nil)
		env.Notes.Notify(env.Ctx, env.Manager.ID, "two", "second", nil)
		env.Notes.Notify(env.Ctx, env.Admin.ID, "other", "not yours", nil)

		n, err := env.Notes.MarkAllRead(env.Ctx, env.Manager)

		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		adminNotes, _ := env.Notes.List(env.Ctx, env.Admin)
		require.Len(t, adminNotes, 1)
		assert.False(t, adminNotes[0].IsRead)
	})

	t.Run("Should not let another user touch a notification", func(t *testing.T) {
		env := newTestEnv(t)
		env.Notes.Notify(env.Ctx, env.Manager.ID, "one", "first", nil)
		mine, _ := env.Notes.List(env.Ctx, env.Manager)
		require.Len(t, mine, 1)

		err := env.Notes.Delete(env.Ctx, env.Admin, mine[0].ID)

		var nf *internal_utils.NotFoundError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("Should swallow a failed write", func(t *testing.T) {
		env := newTestEnv(t)
		env.Store.FailNext("notifications.create", errors.New("disk full"))

		env.Notes.Notify(env.Ctx, env.Manager.ID, "one", "first", nil)

		list, err := env.Notes.List(env.Ctx, env.Manager)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
