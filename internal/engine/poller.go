package engine

import (
	"context"
	"time"
)

// DefaultPollInterval is the safety-net refresh cadence.
const DefaultPollInterval = 7 * time.Second

// StartPoller launches a background goroutine that calls tick at a fixed
// cadence until ctx is cancelled. It returns immediately. The first tick
// fires one interval after the call.
func StartPoller(ctx context.Context, interval time.Duration, tick func()) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
}
