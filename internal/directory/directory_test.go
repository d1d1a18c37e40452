package directory

import (
	"context"
	"errors"
	"testing"
)

func TestService_Resolve(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(ServiceNumber{
		ID:               "sn-1",
		Number:           "+15558880000",
		OwnerPhone:       "+15551112222",
		RatePerTickMinor: 3,
	})
	svc := NewService(repo)

	sn, err := svc.Resolve(context.Background(), "+15558880000")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if sn.OwnerPhone != "+15551112222" {
		t.Fatalf("unexpected owner phone %q", sn.OwnerPhone)
	}
	if sn.RatePerTickMinor != 3 {
		t.Fatalf("unexpected rate %d", sn.RatePerTickMinor)
	}
}

func TestService_ResolveUnknownNumber(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Resolve(context.Background(), "+15550000000"); !errors.Is(err, ErrNumberNotFound) {
		t.Fatalf("expected ErrNumberNotFound, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, ErrNumberNotFound) {
		t.Fatalf("expected ErrNumberNotFound for empty number, got %v", err)
	}
}
