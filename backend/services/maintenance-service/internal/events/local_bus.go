package events

import (
	"context"
	"sync"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

const subscriberBuffer = 64

// LocalBus fans events out to in-process subscribers. A slow subscriber
// drops events rather than blocking publishers; watchers reload full
// state on the next event anyway.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[chan ChangeEvent]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[chan ChangeEvent]struct{})}
}

func (b *LocalBus) Publish(_ context.Context, ev ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			utils.Logger.Debugf("local bus: dropping %s event for slow subscriber", Subject(ev))
		}
	}
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
