package metering

import "sync"

// Registry is the in-memory map of live call sessions, the single source of
// truth for "is this call currently billable".
//
// Concurrency discipline: the registry mutex guards only the map; each Entry
// carries its own mutex so handlers for different call ids never contend,
// while a tick and a concurrent lifecycle notification for the same call id
// are serialized.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Entry owns one session. All reads and writes of the session go through
// Update/Snapshot so they happen under the entry lock.
type Entry struct {
	mu   sync.Mutex
	sess Session
}

func (e *Entry) Update(fn func(s *Session)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.sess)
}

func (e *Entry) Snapshot() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Create inserts a new entry for the session's call id. It reports false if
// an entry already exists, which makes duplicate "answered" notifications a
// natural no-op: at most one live session per call id, ever.
func (r *Registry) Create(s Session) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[s.CallID]; ok {
		return nil, false
	}
	e := &Entry{sess: s}
	r.entries[s.CallID] = e
	return e, true
}

func (r *Registry) Get(callID string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[callID]
	return e, ok
}

// Remove deletes the entry and returns it so the caller can finish closing
// the session after the map no longer references it.
func (r *Registry) Remove(callID string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[callID]
	if ok {
		delete(r.entries, callID)
	}
	return e, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// BillingCount reports how many registered sessions are currently in Billing.
func (r *Registry) BillingCount() int {
	r.mu.Lock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	n := 0
	for _, e := range entries {
		if e.Snapshot().State == StateBilling {
			n++
		}
	}
	return n
}
