package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// DefaultMaxRetries bounds the optimistic-lock loop.
const DefaultMaxRetries = 3

// EntityWithVersion is a pointer to a row guarded by row_version.
// comparable lets WithRetry detect a nil fetch.
type EntityWithVersion interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

// UpdateIfVersionFunc writes entity only if the stored row_version still
// equals expected. Zero rows affected means someone else won.
type UpdateIfVersionFunc[T EntityWithVersion] func(ctx context.Context, entity T, expected int64) (pgconn.CommandTag, error)

type GetByIDFunc[T EntityWithVersion] func(ctx context.Context, id uuid.UUID) (T, error)

/*
WithRetry runs a read-mutate-update loop with optimistic locking. The
mutation is re-applied to fresh state on every attempt, so it must be a pure
function of the entity it receives. When every attempt loses the race the
error wraps utils.ErrRowVersionConflict.
*/
func WithRetry[T EntityWithVersion](
	ctx context.Context,
	maxRetries int,
	id uuid.UUID,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	var zero T
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, err := getByID(ctx, id)
		if err != nil {
			return err
		}
		if current == zero {
			return ErrNotFound
		}

		expected := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}
		tag, err := updateIfVersion(ctx, current, expected)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(expected + 1)
			return nil
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", id, maxRetries, utils.ErrRowVersionConflict)
}
