package reporting

import (
	"context"
	"database/sql"
	"time"

	"callmeter/internal/audit"
)

// PostgresRepo reads the audit_events table written by internal/audit.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListEvents(ctx context.Context, payer string, from, to time.Time) ([]audit.Event, error) {
	const q = `
SELECT id, type, call_id, payer, amount_minor, balance_minor,
       actor_user_id, actor_role, message, metadata, created_at
FROM audit_events
WHERE payer = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, payer, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.CallID,
			&e.Payer,
			&e.AmountMinor,
			&e.BalanceMinor,
			&e.ActorUserID,
			&e.ActorRole,
			&e.Message,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
