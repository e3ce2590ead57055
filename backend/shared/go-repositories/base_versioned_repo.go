package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// BaseVersionedRepo is embedded by the repositories whose rows carry a
// row_version: tasks, service requests and providers.
type BaseVersionedRepo[T EntityWithVersion] struct {
	db         DB
	selectByID string
	scan       func(row pgx.Row) (T, error)
}

func NewBaseRepo[T EntityWithVersion](db DB, selectByID string, scan func(pgx.Row) (T, error)) *BaseVersionedRepo[T] {
	return &BaseVersionedRepo[T]{db: db, selectByID: selectByID, scan: scan}
}

func (b *BaseVersionedRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return b.scan(b.db.QueryRow(ctx, b.selectByID, id))
}

func (b *BaseVersionedRepo[T]) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(T) error, updateIfVersion UpdateIfVersionFunc[T]) error {
	return WithRetry(ctx, DefaultMaxRetries, id, b.GetByID, updateIfVersion, mutate)
}
