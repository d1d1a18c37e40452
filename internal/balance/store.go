package balance

import (
	"context"
	"errors"
)

// Store is the balance store contract consumed by the metering controller.
//
// Money invariants:
// - Debit is an atomic compare-and-decrement: it either fully succeeds
//   (balance >= amount, balance reduced by amount) or is refused. It never
//   partially applies and never clamps to zero.
// - The store is shared and externally mutated (top-ups may land at any
//   time); callers must never read-then-write a balance themselves.
// - Concurrent Debit calls for the same payer with exactly one charge's
//   worth of funds left must yield exactly one success.
type Store interface {
	// GetBalance returns the payer's current balance in minor units.
	GetBalance(ctx context.Context, payer string) (int64, error)

	// Debit atomically decrements the payer's balance by amount and
	// returns the remaining balance.
	Debit(ctx context.Context, payer string, amount int64) (int64, error)

	// Credit atomically increments the payer's balance by amount and
	// returns the new balance. Used for top-ups and admin adjustments.
	Credit(ctx context.Context, payer string, amount int64) (int64, error)
}

var (
	// ErrPayerNotFound means the payer has no balance record.
	ErrPayerNotFound = errors.New("balance: payer not found")

	// ErrInsufficientFunds means the balance is lower than the requested debit.
	ErrInsufficientFunds = errors.New("balance: insufficient funds")

	// ErrUnavailable is a transient store failure. Callers retry on their
	// own schedule (the metering controller retries on the next tick only).
	ErrUnavailable = errors.New("balance: store unavailable")

	ErrInvalidArgument = errors.New("balance: invalid argument")
)
