package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreTables(t *testing.T) {
	ctx := context.Background()

	t.Run("Should list rows in insertion order", func(t *testing.T) {
		s := New()
		repo := s.Buildings()
		names := []string{"C", "A", "B"}
		for _, n := range names {
			require.NoError(t, repo.Create(ctx, &models.Building{ID: uuid.New(), Name: n}))
		}

		got, err := repo.List(ctx)

		require.NoError(t, err)
		require.Len(t, got, 3)
		for i, b := range got {
			assert.Equal(t, names[i], b.Name)
		}
	})

	t.Run("Should reject a duplicate id", func(t *testing.T) {
		s := New()
		b := &models.Building{ID: uuid.New(), Name: "Twin"}
		require.NoError(t, s.Buildings().Create(ctx, b))

		err := s.Buildings().Create(ctx, b)

		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("Should fire an injected fault once and count only real writes", func(t *testing.T) {
		s := New()
		id := uuid.New()
		require.NoError(t, s.Units().Create(ctx, &models.Unit{ID: id, UnitNumber: "1"}))
		boom := errors.New("boom")
		s.FailNext("units.delete", boom)

		first := s.Units().Delete(ctx, id)
		second := s.Units().Delete(ctx, id)

		assert.ErrorIs(t, first, boom)
		assert.NoError(t, second)
		assert.Equal(t, 2, s.Writes("units"))
	})

	t.Run("Should treat deleting a missing id as a no-op", func(t *testing.T) {
		s := New()

		assert.NoError(t, s.Tasks().Delete(ctx, uuid.New()))
	})
}

func TestRateLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("Should allow up to the limit inside one window", func(t *testing.T) {
		repo := New().RateLimits()

		for i := 0; i < 3; i++ {
			ok, err := repo.IncrementAndCheck(ctx, "login:ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, ok, "attempt %d", i+1)
		}
		ok, err := repo.IncrementAndCheck(ctx, "login:ip:1.2.3.4", 3, time.Minute)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should start a new window once the old one expired", func(t *testing.T) {
		s := New()
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s.Now = func() time.Time { return now }
		repo := s.RateLimits()
		_, _ = repo.IncrementAndCheck(ctx, "k", 1, time.Minute)
		blocked, _ := repo.IncrementAndCheck(ctx, "k", 1, time.Minute)
		require.False(t, blocked)

		now = now.Add(2 * time.Minute)
		ok, err := repo.IncrementAndCheck(ctx, "k", 1, time.Minute)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Should remove only expired counters on cleanup", func(t *testing.T) {
		s := New()
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s.Now = func() time.Time { return now }
		repo := s.RateLimits()
		_, _ = repo.IncrementAndCheck(ctx, "old", 5, time.Minute)
		_, _ = repo.IncrementAndCheck(ctx, "fresh", 5, time.Hour)

		now = now.Add(10 * time.Minute)
		n, err := repo.CleanupExpired(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
