package services

import (
	"context"
	"time"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/events"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// feedDebounce coalesces bursts of changes (a cascade emits many) into one
// reload.
const feedDebounce = 150 * time.Millisecond

// FeedService pushes a freshly scoped snapshot to a watcher whenever
// anything changes.
type FeedService struct {
	scope *ScopeService
	sub   events.ChangeSubscriber
}

func NewFeedService(scope *ScopeService, sub events.ChangeSubscriber) *FeedService {
	return &FeedService{scope: scope, sub: sub}
}

/*
Watch sends the actor's current snapshot, then a new one after every
change, until ctx ends or push fails. Each push is computed from scratch
so scope changes show up immediately.
*/
func (s *FeedService) Watch(ctx context.Context, actor models.Actor, push func(Snapshot) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := s.sub.Subscribe(ctx)
	if err != nil {
		return err
	}

	send := func() error {
		snap, err := s.scope.SnapshotFor(ctx, actor)
		if err != nil {
			return err
		}
		return push(snap)
	}
	if err := send(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			drain(changes, feedDebounce)
			if err := send(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				utils.Logger.WithError(err).WithField("actor", actor.ID).Warn("feed push failed")
				return err
			}
		}
	}
}

// drain swallows events arriving within window of each other.
func drain(ch <-chan events.ChangeEvent, window time.Duration) {
	timer := time.NewTimer(window)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(window)
		case <-timer.C:
			return
		}
	}
}
