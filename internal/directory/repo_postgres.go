package directory

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo reads the service number directory from Postgres.
//
// Assumed tables:
// - service_numbers (id, number, owner_id, rate_per_tick_minor)
// - service_owners (id, phone)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) FindByNumber(ctx context.Context, number string) (ServiceNumber, bool, error) {
	const q = `
SELECT sn.id, sn.number, o.phone, sn.rate_per_tick_minor
FROM service_numbers sn
JOIN service_owners o ON o.id = sn.owner_id
WHERE sn.number = $1
`
	var sn ServiceNumber
	err := r.db.QueryRowContext(ctx, q, number).Scan(
		&sn.ID,
		&sn.Number,
		&sn.OwnerPhone,
		&sn.RatePerTickMinor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ServiceNumber{}, false, nil
		}
		return ServiceNumber{}, false, err
	}
	return sn, true, nil
}
