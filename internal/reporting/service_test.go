package reporting

import (
	"context"
	"testing"
	"time"

	"callmeter/internal/audit"
)

func TestSpendSummaryAggregatesEvents(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	repo.Add(
		audit.Event{Type: audit.EventTypeCharge, Payer: "+1555", CallID: "CA1", AmountMinor: 3, CreatedAt: base.Add(1 * time.Minute)},
		audit.Event{Type: audit.EventTypeCharge, Payer: "+1555", CallID: "CA1", AmountMinor: 3, CreatedAt: base.Add(2 * time.Minute)},
		audit.Event{Type: audit.EventTypeCharge, Payer: "+1555", CallID: "CA2", AmountMinor: 5, CreatedAt: base.Add(3 * time.Minute)},
		audit.Event{Type: audit.EventTypeWarning, Payer: "+1555", CallID: "CA1", CreatedAt: base.Add(2 * time.Minute)},
		audit.Event{Type: audit.EventTypeTermination, Payer: "+1555", CallID: "CA1", CreatedAt: base.Add(4 * time.Minute)},
		audit.Event{Type: audit.EventTypeAdminCredit, Payer: "+1555", AmountMinor: 100, CreatedAt: base.Add(5 * time.Minute)},
		// outside the range
		audit.Event{Type: audit.EventTypeCharge, Payer: "+1555", CallID: "CA3", AmountMinor: 50, CreatedAt: base.Add(2 * time.Hour)},
		// different payer
		audit.Event{Type: audit.EventTypeCharge, Payer: "+1666", CallID: "CA4", AmountMinor: 7, CreatedAt: base.Add(1 * time.Minute)},
	)

	svc := NewService(repo)
	got, err := svc.SpendSummary(context.Background(), SpendSummaryRequest{
		Payer: "+1555",
		Range: TimeRange{From: base, To: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got.ChargedMinor != 11 || got.ChargeCount != 3 {
		t.Fatalf("unexpected charges: %+v", got)
	}
	if got.CreditedMinor != 100 {
		t.Fatalf("unexpected credits: %+v", got)
	}
	if got.NetDeltaMinor != 89 {
		t.Fatalf("unexpected net delta: %+v", got)
	}
	if got.Warnings != 1 || got.Terminations != 1 {
		t.Fatalf("unexpected warn/termination counts: %+v", got)
	}
	if got.MeteredCalls != 2 {
		t.Fatalf("expected 2 metered calls, got %d", got.MeteredCalls)
	}
}

func TestSpendSummaryValidatesRequest(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	now := time.Now()

	cases := []SpendSummaryRequest{
		{Payer: "", Range: TimeRange{From: now.Add(-time.Hour), To: now}},
		{Payer: "+1555"},
		{Payer: "+1555", Range: TimeRange{From: now, To: now.Add(-time.Hour)}},
	}
	for i, req := range cases {
		if _, err := svc.SpendSummary(context.Background(), req); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestSpendSummaryEmptyRange(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	base := time.Unix(1700000000, 0).UTC()

	got, err := svc.SpendSummary(context.Background(), SpendSummaryRequest{
		Payer: "+1555",
		Range: TimeRange{From: base, To: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ChargedMinor != 0 || got.ChargeCount != 0 || got.MeteredCalls != 0 {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}
