package metering

import (
	"errors"

	"callmeter/internal/balance"
)

// Billing policy: pure decision logic, no I/O.

// Action is the outcome of a billing decision for one tick.
type Action int

const (
	ActionContinue Action = iota
	ActionWarn
	ActionTerminate
)

func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionTerminate:
		return "terminate"
	default:
		return "continue"
	}
}

// InitialCharge is the amount charged when the call connects. It equals the
// session rate, fixed at session creation; it is never recomputed per tick.
func InitialCharge(rateMinor int64) int64 {
	return rateMinor
}

// Decide maps a debit outcome to the action the scheduler takes.
//
// A refused debit (insufficient funds or unknown payer) terminates: billing
// an empty or invalid account is unsafe and is never retried. A transient
// store failure continues, to be retried on the next scheduled tick only.
//
// The warning fires on exact equality with the threshold, not "at or below".
// A debit that jumps over the threshold (rate 3 against balance 7 leaves 4,
// skipping 6) fires no warning.
func Decide(debitErr error, balanceAfter, warnThreshold int64) Action {
	switch {
	case errors.Is(debitErr, balance.ErrInsufficientFunds),
		errors.Is(debitErr, balance.ErrPayerNotFound):
		return ActionTerminate
	case debitErr != nil:
		return ActionContinue
	case balanceAfter == warnThreshold:
		return ActionWarn
	default:
		return ActionContinue
	}
}
