package balance

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests and local development.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]int64)}
}

// Seed sets a payer's balance directly, creating the record if needed.
func (s *MemoryStore) Seed(payer string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[payer] = amount
}

func (s *MemoryStore) GetBalance(ctx context.Context, payer string) (int64, error) {
	if payer == "" {
		return 0, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[payer]
	if !ok {
		return 0, ErrPayerNotFound
	}
	return b, nil
}

func (s *MemoryStore) Debit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[payer]
	if !ok {
		return 0, ErrPayerNotFound
	}
	if b < amount {
		return b, ErrInsufficientFunds
	}
	b -= amount
	s.balances[payer] = b
	return b, nil
}

func (s *MemoryStore) Credit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[payer] + amount
	s.balances[payer] = b
	return b, nil
}
