package telephony

import (
	"context"
	"errors"
)

// Gateway is the outbound control surface toward the telephony provider.
//
// Rules:
// - No provider SDK calls outside telephony adapters.
// - Callers treat every method as best-effort network I/O: a failed
//   Terminate is retried by upstream policy, not here.
type Gateway interface {
	// Terminate asks the provider to end a live call.
	Terminate(ctx context.Context, callID string) error

	// PlayAudio plays an announcement into a live call without ending it.
	PlayAudio(ctx context.Context, callID, assetURL string) error
}

// ErrGatewayUnavailable wraps transport failures and non-2xx provider
// responses so callers can branch with errors.Is.
var ErrGatewayUnavailable = errors.New("telephony: gateway unavailable")
