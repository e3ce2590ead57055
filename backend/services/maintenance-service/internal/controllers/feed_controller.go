package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/constants"
	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/services"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

// FeedController streams the caller's scoped snapshot as server-sent events.
type FeedController struct {
	feed         *services.FeedService
	pingInterval time.Duration
}

func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{feed: feed, pingInterval: constants.FeedPingInterval}
}

// GET /api/v1/feed
func (c *FeedController) StreamHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Streaming unsupported", nil, nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Watch and the ping loop write to the same response.
	var mu sync.Mutex
	write := func(chunk string) error {
		mu.Lock()
		defer mu.Unlock()
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(c.pingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if write(": ping\n\n") != nil {
					return
				}
			}
		}
	}()

	err := c.feed.Watch(ctx, actor, func(snap services.Snapshot) error {
		body, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		return write(fmt.Sprintf("event: %s\ndata: %s\n\n", constants.FeedEventName, body))
	})
	if err != nil {
		utils.Logger.WithError(err).WithField("actor", actor.ID).Warn("feed stream ended")
	}
}
