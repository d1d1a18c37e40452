package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. Append-only:
// recorded events are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to callers by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCharge records a successful debit against a live call.
func (s *Service) LogCharge(ctx context.Context, callID, payer string, amountMinor, balanceMinor int64) error {
	return s.Append(ctx, Event{
		Type:         EventTypeCharge,
		CallID:       callID,
		Payer:        payer,
		AmountMinor:  amountMinor,
		BalanceMinor: balanceMinor,
		Message:      "tick charge applied",
	})
}

// LogWarning records a low-balance warning emitted for a live call.
func (s *Service) LogWarning(ctx context.Context, callID, payer string, balanceMinor int64) error {
	return s.Append(ctx, Event{
		Type:         EventTypeWarning,
		CallID:       callID,
		Payer:        payer,
		BalanceMinor: balanceMinor,
		Message:      "low balance warning issued",
	})
}

// LogTermination records a call torn down by the platform or the network.
func (s *Service) LogTermination(ctx context.Context, callID, payer, reason string) error {
	return s.Append(ctx, Event{
		Type:    EventTypeTermination,
		CallID:  callID,
		Payer:   payer,
		Message: reason,
	})
}

// LogAdminCredit records a privileged manual balance credit.
func (s *Service) LogAdminCredit(ctx context.Context, payer, actorUserID, actorRole string, amountMinor, balanceMinor int64, reason string) error {
	return s.Append(ctx, Event{
		Type:         EventTypeAdminCredit,
		Payer:        payer,
		AmountMinor:  amountMinor,
		BalanceMinor: balanceMinor,
		ActorUserID:  actorUserID,
		ActorRole:    actorRole,
		Message:      reason,
	})
}
