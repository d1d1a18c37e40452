package metering

import "testing"

func TestRegistry_CreateRejectsDuplicate(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Create(Session{CallID: "CA1", State: StatePending}); !ok {
		t.Fatalf("expected first create to succeed")
	}
	if _, ok := r.Create(Session{CallID: "CA1", State: StatePending}); ok {
		t.Fatalf("expected duplicate create to fail")
	}
	if r.Len() != 1 {
		t.Fatalf("expected one entry, got %d", r.Len())
	}
}

func TestRegistry_RemoveReturnsEntry(t *testing.T) {
	r := NewRegistry()
	r.Create(Session{CallID: "CA1", Payer: "+1555", State: StatePending})

	e, ok := r.Remove("CA1")
	if !ok {
		t.Fatalf("expected entry")
	}
	if e.Snapshot().Payer != "+1555" {
		t.Fatalf("unexpected payer %q", e.Snapshot().Payer)
	}
	if _, ok := r.Remove("CA1"); ok {
		t.Fatalf("expected second remove to find nothing")
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestRegistry_BillingCount(t *testing.T) {
	r := NewRegistry()
	r.Create(Session{CallID: "CA1", State: StateBilling})
	r.Create(Session{CallID: "CA2", State: StatePending})
	e, _ := r.Create(Session{CallID: "CA3", State: StateBilling})

	if got := r.BillingCount(); got != 2 {
		t.Fatalf("expected 2 billing sessions, got %d", got)
	}

	e.Update(func(s *Session) { s.State = StateClosed })
	if got := r.BillingCount(); got != 1 {
		t.Fatalf("expected 1 billing session, got %d", got)
	}
}
