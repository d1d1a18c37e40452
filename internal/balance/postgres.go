package balance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"callmeter/pkg/utils"

	"github.com/google/uuid"
)

// PostgresStore persists balances in Postgres with an append-only ledger.
//
// Assumed tables:
// - customer_balances (payer_identity PK, balance_minor, updated_at)
// - balance_ledger (id, payer_identity, type, amount_minor, created_at)
//
// Money invariant: any balance change writes a corresponding ledger row,
// in the same transaction. The ledger is never updated or deleted.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

const (
	ledgerTypeDebit  = "debit"
	ledgerTypeCredit = "credit"
)

func (s *PostgresStore) GetBalance(ctx context.Context, payer string) (int64, error) {
	if payer == "" {
		return 0, ErrInvalidArgument
	}
	const q = `
SELECT balance_minor
FROM customer_balances
WHERE payer_identity = $1
`
	var bal int64
	if err := s.db.QueryRowContext(ctx, q, payer).Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPayerNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return bal, nil
}

// Debit is a conditional decrement: the WHERE clause refuses the update when
// funds are short, so two racing debits can never both succeed on the last
// charge's worth of balance.
func (s *PostgresStore) Debit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}

	now := s.clock().UTC()
	var remaining int64

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE customer_balances
SET balance_minor = balance_minor - $2, updated_at = $3
WHERE payer_identity = $1 AND balance_minor >= $2
RETURNING balance_minor
`
		err := tx.QueryRowContext(ctx, q, payer, amount, now).Scan(&remaining)
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish missing payer from short funds.
			const check = `SELECT balance_minor FROM customer_balances WHERE payer_identity = $1`
			var current int64
			if cerr := tx.QueryRowContext(ctx, check, payer).Scan(&current); cerr != nil {
				if errors.Is(cerr, sql.ErrNoRows) {
					return ErrPayerNotFound
				}
				return cerr
			}
			remaining = current
			return ErrInsufficientFunds
		}
		if err != nil {
			return err
		}
		return insertLedger(ctx, tx, payer, ledgerTypeDebit, -amount, now)
	})
	if err != nil {
		if errors.Is(err, ErrPayerNotFound) || errors.Is(err, ErrInsufficientFunds) {
			return remaining, err
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return remaining, nil
}

func (s *PostgresStore) Credit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}

	now := s.clock().UTC()
	var newBalance int64

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO customer_balances (payer_identity, balance_minor, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (payer_identity)
DO UPDATE SET balance_minor = customer_balances.balance_minor + EXCLUDED.balance_minor,
              updated_at = EXCLUDED.updated_at
RETURNING balance_minor
`
		if err := tx.QueryRowContext(ctx, q, payer, amount, now).Scan(&newBalance); err != nil {
			return err
		}
		return insertLedger(ctx, tx, payer, ledgerTypeCredit, amount, now)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return newBalance, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, payer, entryType string, amountMinor int64, now time.Time) error {
	const q = `
INSERT INTO balance_ledger (id, payer_identity, type, amount_minor, created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.ExecContext(ctx, q, uuid.NewString(), payer, entryType, amountMinor, now)
	return err
}
