package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartPoller_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32
	StartPoller(ctx, 10*time.Millisecond, func() { ticks.Add(1) })

	eventually(t, func() bool { return ticks.Load() >= 3 })
	cancel()
	time.Sleep(30 * time.Millisecond)
	stopped := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if got := ticks.Load(); got != stopped {
		t.Fatalf("ticks after cancel grew from %d to %d", stopped, got)
	}
}

func TestStartPoller_FirstTickWaitsOneInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var ticks atomic.Int32
	StartPoller(ctx, time.Hour, func() { ticks.Add(1) })

	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != 0 {
		t.Fatalf("ticks = %d, want 0 before the first interval", got)
	}
}
