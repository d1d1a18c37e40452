package balance

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps balances in Redis, one key per payer.
//
// Debit runs as a Lua script so the compare-and-decrement is atomic on the
// server; two debits racing for the last charge's worth of funds resolve to
// exactly one success.
type RedisStore struct {
	rdb       *redis.Client
	keyPrefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, keyPrefix: "balance:"}
}

var debitScript = redis.NewScript(`
-- KEYS[1] = balance key
-- ARGV[1] = amount (int)
--
-- Returns {status, balance}:
--  status  0 = debited, balance is the remainder
--  status -1 = payer not found
--  status -2 = insufficient funds, balance is the untouched value
local bal = redis.call('GET', KEYS[1])
if not bal then
  return {-1, 0}
end
bal = tonumber(bal)
local amount = tonumber(ARGV[1])
if bal < amount then
  return {-2, bal}
end
bal = redis.call('DECRBY', KEYS[1], amount)
return {0, bal}
`)

func (s *RedisStore) key(payer string) string { return s.keyPrefix + payer }

func (s *RedisStore) GetBalance(ctx context.Context, payer string) (int64, error) {
	if payer == "" {
		return 0, ErrInvalidArgument
	}
	bal, err := s.rdb.Get(ctx, s.key(payer)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrPayerNotFound
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return bal, nil
}

func (s *RedisStore) Debit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}
	res, err := debitScript.Run(ctx, s.rdb, []string{s.key(payer)}, amount).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("%w: unexpected script reply", ErrUnavailable)
	}
	switch res[0] {
	case 0:
		return res[1], nil
	case -1:
		return 0, ErrPayerNotFound
	case -2:
		return res[1], ErrInsufficientFunds
	default:
		return 0, fmt.Errorf("%w: unexpected script status %d", ErrUnavailable, res[0])
	}
}

func (s *RedisStore) Credit(ctx context.Context, payer string, amount int64) (int64, error) {
	if payer == "" || amount <= 0 {
		return 0, ErrInvalidArgument
	}
	bal, err := s.rdb.IncrBy(ctx, s.key(payer), amount).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return bal, nil
}
