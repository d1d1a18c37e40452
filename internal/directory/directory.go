package directory

import (
	"context"
	"errors"
)

// ServiceNumber maps a platform-owned dialed number to the service owner's
// real phone and the per-tick rate charged to callers.
//
// This is the single authoritative record used to create a metering session;
// webhook query parameters are never trusted to re-derive rate or target on
// later callbacks.
type ServiceNumber struct {
	ID     string `json:"id" db:"id"`
	Number string `json:"number" db:"number"`

	// OwnerPhone is the connect target (the service owner's real number).
	// It is never exposed to the caller.
	OwnerPhone string `json:"owner_phone" db:"owner_phone"`

	// RatePerTickMinor is the charge per billing tick in minor units.
	// Zero means the platform default applies.
	RatePerTickMinor int64 `json:"rate_per_tick_minor" db:"rate_per_tick_minor"`
}

type Repository interface {
	FindByNumber(ctx context.Context, number string) (ServiceNumber, bool, error)
}

var ErrNumberNotFound = errors.New("directory: service number not found")

// Service resolves dialed numbers to service records.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Resolve(ctx context.Context, number string) (ServiceNumber, error) {
	if number == "" {
		return ServiceNumber{}, ErrNumberNotFound
	}
	sn, ok, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return ServiceNumber{}, err
	}
	if !ok {
		return ServiceNumber{}, ErrNumberNotFound
	}
	return sn, nil
}
