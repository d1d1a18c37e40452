package reporting

import (
	"context"
	"errors"
	"time"

	"callmeter/internal/audit"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations should query immutable sources (the billing event
// trail); reporting never reads mutable balance state.
type Repository interface {
	ListEvents(ctx context.Context, payer string, from, to time.Time) ([]audit.Event, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// SpendSummary aggregates a payer's billing activity over a time range.
func (s *Service) SpendSummary(ctx context.Context, req SpendSummaryRequest) (SpendSummary, error) {
	if req.Payer == "" {
		return SpendSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return SpendSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return SpendSummary{}, errors.New("reporting: repository not configured")
	}

	events, err := s.repo.ListEvents(ctx, req.Payer, req.Range.From, req.Range.To)
	if err != nil {
		return SpendSummary{}, err
	}

	out := SpendSummary{Payer: req.Payer}
	chargedCalls := make(map[string]struct{})
	for _, e := range events {
		switch e.Type {
		case audit.EventTypeCharge:
			out.ChargedMinor += e.AmountMinor
			out.ChargeCount++
			if e.CallID != "" {
				chargedCalls[e.CallID] = struct{}{}
			}
		case audit.EventTypeAdminCredit:
			out.CreditedMinor += e.AmountMinor
		case audit.EventTypeWarning:
			out.Warnings++
		case audit.EventTypeTermination:
			out.Terminations++
		}
	}
	out.MeteredCalls = len(chargedCalls)
	out.NetDeltaMinor = out.CreditedMinor - out.ChargedMinor
	return out, nil
}
