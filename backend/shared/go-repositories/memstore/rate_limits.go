package memstore

import (
	"context"
	"time"

	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-repositories"
)

type rateCounter struct {
	count     int
	expiresAt time.Time
}

func (s *Store) RateLimits() repositories.RateLimitRepository { return &rateLimitRepo{s} }

type rateLimitRepo struct{ s *Store }

func (r *rateLimitRepo) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	c, ok := r.s.rateLimits[key]
	if !ok || c.expiresAt.Before(now) {
		c = rateCounter{expiresAt: now.Add(window)}
	}
	c.count++
	r.s.rateLimits[key] = c
	return c.count <= limit, nil
}

func (r *rateLimitRepo) Reset(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rateLimits, key)
	return nil
}

func (r *rateLimitRepo) CleanupExpired(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.Now()
	var n int64
	for k, c := range r.s.rateLimits {
		if c.expiresAt.Before(now) {
			delete(r.s.rateLimits, k)
			n++
		}
	}
	return n, nil
}
