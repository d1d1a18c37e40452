package reporting

import (
	"context"
	"sync"
	"time"

	"callmeter/internal/audit"
)

// MemoryRepo holds events in memory. Tests and local development only.
type MemoryRepo struct {
	mu     sync.Mutex
	events []audit.Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Add(events ...audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *MemoryRepo) ListEvents(ctx context.Context, payer string, from, to time.Time) ([]audit.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Payer != payer {
			continue
		}
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
