package metering

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_StartIsIdempotent(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	tick := func(ctx context.Context) bool { return true }
	if !s.Start("CA1", time.Hour, tick) {
		t.Fatalf("expected first start to succeed")
	}
	if s.Start("CA1", time.Hour, tick) {
		t.Fatalf("expected second start to be a no-op")
	}
	if s.Active() != 1 {
		t.Fatalf("expected exactly one timer, got %d", s.Active())
	}
}

func TestScheduler_CancelIsIdempotent(t *testing.T) {
	s := NewScheduler()
	s.Start("CA1", time.Hour, func(ctx context.Context) bool { return true })

	s.Cancel("CA1")
	s.Cancel("CA1") // second cancel must be a safe no-op
	s.Cancel("never-started")

	if s.Active() != 0 {
		t.Fatalf("expected no timers, got %d", s.Active())
	}
}

func TestScheduler_NoTickAfterCancelReturns(t *testing.T) {
	s := NewScheduler()
	var ticks atomic.Int64
	s.Start("CA1", 5*time.Millisecond, func(ctx context.Context) bool {
		ticks.Add(1)
		return true
	})

	time.Sleep(30 * time.Millisecond)
	s.Cancel("CA1")
	after := ticks.Load()

	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Fatalf("tick fired after cancel returned: %d -> %d", after, got)
	}
}

func TestScheduler_CancelBeforeFirstTick(t *testing.T) {
	s := NewScheduler()
	var ticks atomic.Int64
	s.Start("CA1", time.Hour, func(ctx context.Context) bool {
		ticks.Add(1)
		return true
	})
	s.Cancel("CA1")

	if ticks.Load() != 0 {
		t.Fatalf("expected zero ticks, got %d", ticks.Load())
	}
	if s.IsActive("CA1") {
		t.Fatalf("expected timer gone")
	}
}

func TestScheduler_TickReturningFalseStopsTimer(t *testing.T) {
	s := NewScheduler()
	var ticks atomic.Int64
	s.Start("CA1", 5*time.Millisecond, func(ctx context.Context) bool {
		return ticks.Add(1) < 3
	})

	deadline := time.Now().Add(2 * time.Second)
	for s.IsActive("CA1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.IsActive("CA1") {
		t.Fatalf("expected timer to stop itself")
	}
	if got := ticks.Load(); got != 3 {
		t.Fatalf("expected exactly 3 ticks, got %d", got)
	}
	// Cancel after self-stop must remain a safe no-op.
	s.Cancel("CA1")
}

func TestScheduler_TicksAreSequential(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var inFlight atomic.Int64
	var overlapped atomic.Bool
	s.Start("CA1", 2*time.Millisecond, func(ctx context.Context) bool {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		// Slow tick: longer than the interval, so overlapping delivery
		// would be observable.
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return true
	})

	time.Sleep(100 * time.Millisecond)
	s.Cancel("CA1")
	if overlapped.Load() {
		t.Fatalf("ticks overlapped for the same call")
	}
}

func TestScheduler_RejectsInvalidStart(t *testing.T) {
	s := NewScheduler()
	if s.Start("", time.Second, func(ctx context.Context) bool { return true }) {
		t.Fatalf("expected start without call id to fail")
	}
	if s.Start("CA1", 0, func(ctx context.Context) bool { return true }) {
		t.Fatalf("expected start without interval to fail")
	}
	if s.Start("CA1", time.Second, nil) {
		t.Fatalf("expected start without tick func to fail")
	}
}
