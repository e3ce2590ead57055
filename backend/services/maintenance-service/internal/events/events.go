package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Entity names double as NATS subject tokens.
const (
	EntityBuilding     = "building"
	EntityUnit         = "unit"
	EntityComponent    = "component"
	EntityTask         = "task"
	EntityRequest      = "request"
	EntityProvider     = "provider"
	EntityExpense      = "expense"
	EntityUser         = "user"
	EntityNotification = "notification"
	EntityDocument     = "document"
)

// ChangeEvent announces that a record changed. Consumers reload state
// instead of trusting a payload.
type ChangeEvent struct {
	Entity string    `json:"entity"`
	ID     uuid.UUID `json:"id"`
	Op     Op        `json:"op"`
	At     time.Time `json:"at"`
}

type ChangePublisher interface {
	Publish(ctx context.Context, ev ChangeEvent)
}

// ChangeSubscriber hands out a channel of events until ctx is done. The
// channel is closed when the subscription ends.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

type Bus interface {
	ChangePublisher
	ChangeSubscriber
}

// Subject returns the NATS subject for ev, e.g. maintenance.task.update.
func Subject(ev ChangeEvent) string {
	return SubjectPrefix + "." + ev.Entity + "." + string(ev.Op)
}

const (
	SubjectPrefix   = "maintenance"
	SubjectWildcard = SubjectPrefix + ".>"
)

// Emit is a small helper so callers never need a nil check.
func Emit(ctx context.Context, p ChangePublisher, entity string, id uuid.UUID, op Op) {
	if p == nil {
		return
	}
	p.Publish(ctx, ChangeEvent{Entity: entity, ID: id, Op: op, At: time.Now().UTC()})
}
