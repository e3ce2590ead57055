package constants

import (
	"time"
)

// Upload limits
const (
	MaxUploadBytes     = 16 << 20
	MaxUploadFormBytes = MaxUploadBytes + 1<<20
)

// Change feed
const (
	// FeedPingInterval keeps idle SSE connections open through proxies.
	FeedPingInterval = 25 * time.Second
	FeedEventName    = "snapshot"
)

// Scheduled jobs (cron syntax, server local time)
const (
	OrphanSweepSchedule = "15 3 * * *"
	// OrphanSweepTimeout bounds one sweep run.
	OrphanSweepTimeout = 5 * time.Minute
)

// Common concurrency conflict messages
const (
	ErrMsgRowVersionConflictRefresh = "The record has changed, please refresh"
)

// Login throttling. Counters live in rate_limit_attempts.
const (
	LoginLimitPerIP          = 30
	LoginLimitPerEmail       = 10
	LoginRateLimitWindow     = 15 * time.Minute
	RateLimitCleanupSchedule = "0 * * * *"
)
