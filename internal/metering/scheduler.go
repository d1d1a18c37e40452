package metering

import (
	"context"
	"sync"
	"time"
)

// TickFunc runs one billing evaluation for a call. Returning false stops the
// call's timer. A TickFunc must not call Cancel for its own call id; it
// returns false instead, which avoids a tick deadlocking on its own teardown.
type TickFunc func(ctx context.Context) bool

// Scheduler runs exactly one recurring timer per call id. Ticks for a given
// call are strictly sequential: the next tick is not evaluated until the
// previous TickFunc has returned, so a slow debit can never race a second
// debit for the same call.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*timer
}

type timer struct {
	stop chan struct{}
	done chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*timer)}
}

// Start begins ticking for callID. It is idempotent: if a timer is already
// active for this call id the call is a no-op and Start reports false.
func (s *Scheduler) Start(callID string, interval time.Duration, tick TickFunc) bool {
	if callID == "" || interval <= 0 || tick == nil {
		return false
	}
	s.mu.Lock()
	if _, ok := s.timers[callID]; ok {
		s.mu.Unlock()
		return false
	}
	tm := &timer{stop: make(chan struct{}), done: make(chan struct{})}
	s.timers[callID] = tm
	s.mu.Unlock()

	go s.run(callID, tm, interval, tick)
	return true
}

func (s *Scheduler) run(callID string, tm *timer, interval time.Duration, tick TickFunc) {
	defer close(tm.done)
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-tm.stop:
			return
		case <-t.C:
			// A cancel that raced the ticker wins: no tick runs after
			// the stop channel is closed.
			select {
			case <-tm.stop:
				return
			default:
			}
			if !tick(context.Background()) {
				s.removeIf(callID, tm)
				return
			}
		}
	}
}

// Cancel stops the call's timer and does not return until any in-flight tick
// has finished: once Cancel returns, no further tick fires. Canceling a call
// id with no active timer is a no-op.
func (s *Scheduler) Cancel(callID string) {
	s.mu.Lock()
	tm, ok := s.timers[callID]
	if ok {
		delete(s.timers, callID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	close(tm.stop)
	<-tm.done
}

// Shutdown cancels every active timer and waits for in-flight ticks.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	timers := s.timers
	s.timers = make(map[string]*timer)
	s.mu.Unlock()

	for _, tm := range timers {
		close(tm.stop)
	}
	for _, tm := range timers {
		<-tm.done
	}
}

// Active reports the number of live timers.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) IsActive(callID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[callID]
	return ok
}

// removeIf deletes the map entry only if it still points at tm; a concurrent
// Cancel may already have removed it or replaced it with a newer timer.
func (s *Scheduler) removeIf(callID string, tm *timer) {
	s.mu.Lock()
	if cur, ok := s.timers[callID]; ok && cur == tm {
		delete(s.timers, callID)
	}
	s.mu.Unlock()
}
