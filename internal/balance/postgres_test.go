package balance

import (
	"context"
	"errors"
	"testing"
)

// The conditional-decrement behavior relies on Postgres semantics
// (UPDATE ... WHERE balance_minor >= amount) and is covered by integration
// tests against a real database. What we can safely unit-test without a DB
// is input validation, which runs before any connection is touched.

func TestPostgresStore_RejectsInvalidArgs(t *testing.T) {
	s := NewPostgresStore(nil)
	ctx := context.Background()

	if _, err := s.GetBalance(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Debit(ctx, "", 3); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Debit(ctx, "+1555", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := s.Credit(ctx, "+1555", -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
