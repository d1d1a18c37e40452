package metering

import (
	"errors"
	"fmt"
	"testing"

	"callmeter/internal/balance"
)

func TestInitialCharge_EqualsSessionRate(t *testing.T) {
	if got := InitialCharge(3); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := InitialCharge(250); got != 250 {
		t.Fatalf("expected 250, got %d", got)
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name          string
		debitErr      error
		balanceAfter  int64
		warnThreshold int64
		want          Action
	}{
		{"insufficient funds terminates", balance.ErrInsufficientFunds, 1, 6, ActionTerminate},
		{"unknown payer terminates", balance.ErrPayerNotFound, 0, 6, ActionTerminate},
		{"wrapped insufficient funds terminates", fmt.Errorf("debit: %w", balance.ErrInsufficientFunds), 1, 6, ActionTerminate},
		{"transient store error continues", balance.ErrUnavailable, 0, 6, ActionContinue},
		{"balance exactly at threshold warns", nil, 6, 6, ActionWarn},
		{"balance above threshold continues", nil, 7, 6, ActionContinue},
		{"balance below threshold continues", nil, 4, 6, ActionContinue},
		{"healthy balance continues", nil, 100, 6, ActionContinue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.debitErr, tc.balanceAfter, tc.warnThreshold); got != tc.want {
				t.Fatalf("Decide(%v, %d, %d) = %v, want %v",
					tc.debitErr, tc.balanceAfter, tc.warnThreshold, got, tc.want)
			}
		})
	}
}

// The warning deliberately fires on exact equality only: a debit that jumps
// over the threshold never warns.
func TestDecide_OvershootSkipsWarning(t *testing.T) {
	// rate 3 against balance 7 leaves 4, skipping threshold 6
	if got := Decide(nil, 4, 6); got != ActionContinue {
		t.Fatalf("expected continue on overshoot, got %v", got)
	}
}

func TestDecide_TransientErrorIsNotTerminal(t *testing.T) {
	err := fmt.Errorf("tick: %w", balance.ErrUnavailable)
	if got := Decide(err, 0, 0); got != ActionContinue {
		t.Fatalf("expected continue for transient error, got %v", got)
	}
	if errors.Is(err, balance.ErrInsufficientFunds) {
		t.Fatalf("test setup broken: transient error must not match insufficient funds")
	}
}
