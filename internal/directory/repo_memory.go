package directory

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	byNumber map[string]ServiceNumber
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byNumber: make(map[string]ServiceNumber)}
}

func (r *MemoryRepo) Put(sn ServiceNumber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byNumber[sn.Number] = sn
}

func (r *MemoryRepo) FindByNumber(ctx context.Context, number string) (ServiceNumber, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sn, ok := r.byNumber[number]
	return sn, ok, nil
}
