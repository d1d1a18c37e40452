package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Capture is best-effort; do not block billing flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for retention.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// CallID ties the record to a metered call, when applicable.
	CallID string `json:"call_id,omitempty" db:"call_id"`

	// Payer is the billable party's identifier.
	Payer string `json:"payer,omitempty" db:"payer"`

	// AmountMinor is the money movement for charge/credit records.
	AmountMinor int64 `json:"amount_minor,omitempty" db:"amount_minor"`

	// BalanceMinor is the balance observed after the operation.
	BalanceMinor int64 `json:"balance_minor,omitempty" db:"balance_minor"`

	// ActorUserID is the authenticated user causing the event, for
	// admin-initiated records.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCharge      EventType = "charge"
	EventTypeWarning     EventType = "low_balance_warning"
	EventTypeTermination EventType = "forced_termination"
	EventTypeAdminCredit EventType = "admin_credit"
)
