package services

import (
	"context"
	"testing"
	"time"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedWatch(t *testing.T) {
	t.Run("Should push the initial snapshot and again after a change", func(t *testing.T) {
		// ARRANGE
		env := newTestEnv(t)
		ctx, cancel := context.WithTimeout(env.Ctx, 5*time.Second)
		defer cancel()
		pushes := make(chan Snapshot, 8)
		done := make(chan error, 1)

		// ACT
		go func() {
			done <- env.Feed.Watch(ctx, env.Manager, func(s Snapshot) error {
				pushes <- s
				return nil
			})
		}()

		// ASSERT
		first := <-pushes
		assert.Empty(t, first.Buildings)

		_, err := env.Property.CreateBuilding(ctx, env.Manager, dtos.CreateBuildingRequest{Name: "Fresh", Address: "2 Main St"})
		require.NoError(t, err)

		select {
		case next := <-pushes:
			require.Len(t, next.Buildings, 1)
			assert.Equal(t, "Fresh", next.Buildings[0].Name)
		case <-ctx.Done():
			t.Fatal("no snapshot after change")
		}

		cancel()
		assert.NoError(t, <-done)
	})
}
