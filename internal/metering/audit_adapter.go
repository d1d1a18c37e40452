package metering

import (
	"context"
	"log/slog"

	"callmeter/internal/audit"
)

// AuditRecorder adapts audit.Service to the controller's EventRecorder.
// Audit failures are logged and swallowed; billing never blocks on audit.
type AuditRecorder struct {
	Audit *audit.Service
	Log   *slog.Logger
}

func (a AuditRecorder) RecordCharge(ctx context.Context, callID, payer string, amountMinor, balanceMinor int64) {
	if a.Audit == nil {
		return
	}
	if err := a.Audit.LogCharge(ctx, callID, payer, amountMinor, balanceMinor); err != nil {
		a.logErr("charge", callID, err)
	}
}

func (a AuditRecorder) RecordWarning(ctx context.Context, callID, payer string, balanceMinor int64) {
	if a.Audit == nil {
		return
	}
	if err := a.Audit.LogWarning(ctx, callID, payer, balanceMinor); err != nil {
		a.logErr("warning", callID, err)
	}
}

func (a AuditRecorder) RecordTermination(ctx context.Context, callID, payer, reason string) {
	if a.Audit == nil {
		return
	}
	if err := a.Audit.LogTermination(ctx, callID, payer, reason); err != nil {
		a.logErr("termination", callID, err)
	}
}

func (a AuditRecorder) logErr(kind, callID string, err error) {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}
	log.Warn("audit append failed", "kind", kind, "call_id", callID, "err", err)
}
