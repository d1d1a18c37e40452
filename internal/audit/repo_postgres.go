package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to Postgres.
//
// Assumed table: audit_events (id, type, call_id, payer, amount_minor,
// balance_minor, actor_user_id, actor_role, message, metadata, created_at),
// INSERT-only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, call_id, payer, amount_minor, balance_minor,
  actor_user_id, actor_role, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.CallID,
		e.Payer,
		e.AmountMinor,
		e.BalanceMinor,
		e.ActorUserID,
		e.ActorRole,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
