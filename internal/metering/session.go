package metering

import "time"

// State is a call session's billing lifecycle state.
//
// Transitions:
//   Pending -> Billing      first initial charge succeeded
//   Pending -> Closed       initial charge refused, or call ended first
//   Billing -> Terminating  a tick's debit was refused
//   Billing -> Closed       terminal lifecycle notification arrived
//   Terminating -> Closed   termination requested
//
// There is no transition out of Closed.
type State string

const (
	StatePending     State = "pending"
	StateBilling     State = "billing"
	StateTerminating State = "terminating"
	StateClosed      State = "closed"
)

// Session is the authoritative record for one live call.
//
// CallID, Payer, RateMinor, TickInterval and WarnThresholdMinor are fixed at
// session creation and never re-derived from later webhook parameters.
type Session struct {
	CallID string
	Payer  string

	// RateMinor is the charge applied per tick, in minor units.
	RateMinor int64

	TickInterval       time.Duration
	WarnThresholdMinor int64

	State State

	// LastChargedAt records the most recent successful debit. Diagnostics
	// only; charges are tick-counted, never derived from wall clock.
	LastChargedAt time.Time

	// Warned makes the low-balance warning one-shot per session.
	Warned bool
}
