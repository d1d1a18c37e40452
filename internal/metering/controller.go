package metering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"callmeter/internal/balance"
)

// Event is a call lifecycle notification from the call control gateway.
type Event string

const (
	EventInitiated  Event = "initiated"
	EventRinging    Event = "ringing"
	EventAnswered   Event = "answered"
	EventInProgress Event = "in-progress"
	EventCompleted  Event = "completed"
	EventFailed     Event = "failed"
	EventBusy       Event = "busy"
	EventNoAnswer   Event = "no-answer"
	EventCanceled   Event = "canceled"
)

// Terminal reports whether the event means the call is no longer live.
func (e Event) Terminal() bool {
	switch e {
	case EventCompleted, EventFailed, EventBusy, EventNoAnswer, EventCanceled:
		return true
	default:
		return false
	}
}

// billable reports whether the event marks the call as connected.
func (e Event) billable() bool {
	return e == EventAnswered || e == EventInProgress
}

// Gateway is the call control surface the controller needs: force-end a live
// call, and play an audio asset into it. Implemented by internal/telephony.
type Gateway interface {
	Terminate(ctx context.Context, callID string) error
	PlayAudio(ctx context.Context, callID, assetURL string) error
}

// Publisher pushes events to currently connected live-update listeners.
// Fire-and-forget: implementations must never block the caller.
type Publisher interface {
	Publish(v any)
}

// EventRecorder receives billing milestones for the audit trail.
// Best-effort; the controller never fails a billing step over it.
type EventRecorder interface {
	RecordCharge(ctx context.Context, callID, payer string, amountMinor, balanceMinor int64)
	RecordWarning(ctx context.Context, callID, payer string, balanceMinor int64)
	RecordTermination(ctx context.Context, callID, payer, reason string)
}

// StartParams carry the billing parameters for a session. They are read from
// transport exactly once, when the session is created; later notifications
// for the same call id never re-derive them.
type StartParams struct {
	Payer              string
	RateMinor          int64
	TickInterval       time.Duration
	WarnThresholdMinor int64
}

var ErrInvalidNotification = errors.New("metering: invalid notification")

// LowBalanceWarning is the one-shot event pushed to the live update sink.
type LowBalanceWarning struct {
	Type         string `json:"type"`
	CallID       string `json:"call_id"`
	Payer        string `json:"payer"`
	BalanceMinor int64  `json:"balance_minor"`
	Message      string `json:"message"`
}

// ControllerConfig wires the controller's collaborators. Store and Gateway
// are required; Sink and Recorder are optional best-effort side channels.
type ControllerConfig struct {
	Store    balance.Store
	Gateway  Gateway
	Sink     Publisher
	Recorder EventRecorder

	// WarnAssetURL, when set, is played into the call on a low-balance
	// warning.
	WarnAssetURL string

	Logger *slog.Logger
}

// Controller is the call metering and billing controller. It ingests
// lifecycle notifications, owns the session registry and the per-call
// metering timers, and debits the payer's balance while a call is live.
type Controller struct {
	registry *Registry
	sched    *Scheduler

	store    balance.Store
	gateway  Gateway
	sink     Publisher
	recorder EventRecorder

	warnAssetURL string

	log   *slog.Logger
	clock func() time.Time
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Store == nil {
		return nil, errors.New("metering: balance store is required")
	}
	if cfg.Gateway == nil {
		return nil, errors.New("metering: call control gateway is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		registry:     NewRegistry(),
		sched:        NewScheduler(),
		store:        cfg.Store,
		gateway:      cfg.Gateway,
		sink:         cfg.Sink,
		recorder:     cfg.Recorder,
		warnAssetURL: cfg.WarnAssetURL,
		log:          log,
		clock:        time.Now,
	}, nil
}

// HandleNotification is the single entry point for lifecycle notifications.
// Events arrive at-least-once and out-of-order; duplicates and notifications
// for unknown or closed call ids are no-ops, not errors. The returned error
// is for transport acknowledgment only.
func (c *Controller) HandleNotification(ctx context.Context, callID string, ev Event, params StartParams) error {
	if callID == "" {
		return ErrInvalidNotification
	}
	switch {
	case ev.billable():
		return c.handleAnswered(ctx, callID, params)
	case ev.Terminal():
		c.handleTerminal(ctx, callID, ev)
		return nil
	case ev == EventInitiated || ev == EventRinging:
		c.log.Debug("call progress", "call_id", callID, "event", string(ev))
		return nil
	default:
		c.log.Warn("unknown lifecycle event ignored", "call_id", callID, "event", string(ev))
		return nil
	}
}

// ActiveCalls reports the number of registered sessions.
func (c *Controller) ActiveCalls() int {
	return c.registry.Len()
}

// Shutdown stops all metering timers and waits for in-flight ticks.
// Sessions are left registered; a restart re-creates them from fresh
// lifecycle notifications.
func (c *Controller) Shutdown() {
	c.sched.Shutdown()
}

func (c *Controller) handleAnswered(ctx context.Context, callID string, p StartParams) error {
	if p.Payer == "" || p.RateMinor <= 0 || p.TickInterval <= 0 {
		return fmt.Errorf("%w: answered event needs payer, rate and tick interval", ErrInvalidNotification)
	}

	ent, created := c.registry.Create(Session{
		CallID:             callID,
		Payer:              p.Payer,
		RateMinor:          p.RateMinor,
		TickInterval:       p.TickInterval,
		WarnThresholdMinor: p.WarnThresholdMinor,
		State:              StatePending,
	})
	if !created {
		// At-least-once delivery: a repeated answered event must not
		// charge again or start a second timer.
		c.log.Debug("duplicate answered event ignored", "call_id", callID)
		return nil
	}

	amount := InitialCharge(p.RateMinor)
	remaining, err := c.store.Debit(ctx, p.Payer, amount)
	if err != nil {
		c.registry.Remove(callID)
		ent.Update(func(s *Session) { s.State = StateClosed })
		c.log.Warn("initial charge refused, terminating call",
			"call_id", callID, "payer", p.Payer, "err", err)
		if terr := c.gateway.Terminate(ctx, callID); terr != nil {
			c.log.Error("terminate request failed", "call_id", callID, "err", terr)
		}
		if c.recorder != nil {
			c.recorder.RecordTermination(ctx, callID, p.Payer, "initial charge refused")
		}
		return err
	}

	now := c.clock().UTC()
	started := false
	// The Billing transition and the timer start happen under the entry
	// lock as one step, so a terminal event that closed the session during
	// the debit can never leave a timer running for a closed call.
	ent.Update(func(s *Session) {
		if s.State != StatePending {
			return
		}
		s.State = StateBilling
		s.LastChargedAt = now
		c.sched.Start(callID, s.TickInterval, func(ctx context.Context) bool {
			return c.tick(ctx, callID, ent)
		})
		started = true
	})
	if !started {
		c.log.Info("call ended during initial charge", "call_id", callID, "payer", p.Payer)
		return nil
	}

	if c.recorder != nil {
		c.recorder.RecordCharge(ctx, callID, p.Payer, amount, remaining)
	}
	// The initial charge is subject to the same low-balance rule as a tick.
	if Decide(nil, remaining, p.WarnThresholdMinor) == ActionWarn {
		ent.Update(func(s *Session) { s.Warned = true })
		c.warn(ctx, callID, p.Payer, remaining)
	}
	c.log.Info("billing started",
		"call_id", callID, "payer", p.Payer, "rate_minor", p.RateMinor, "balance_minor", remaining)
	return nil
}

func (c *Controller) handleTerminal(ctx context.Context, callID string, ev Event) {
	ent, ok := c.registry.Remove(callID)
	if !ok {
		// Out-of-order or duplicate delivery; nothing to tear down.
		c.log.Debug("lifecycle event for unknown call ignored", "call_id", callID, "event", string(ev))
		return
	}

	ent.Update(func(s *Session) { s.State = StateClosed })
	c.sched.Cancel(callID)

	sess := ent.Snapshot()
	if c.recorder != nil {
		c.recorder.RecordTermination(ctx, callID, sess.Payer, string(ev))
	}
	c.log.Info("call closed", "call_id", callID, "event", string(ev))
}

// tick runs one billing evaluation. Returning false tears the timer down.
func (c *Controller) tick(ctx context.Context, callID string, ent *Entry) bool {
	var payer string
	var rate, warnThreshold int64
	var alreadyWarned bool
	proceed := false
	ent.Update(func(s *Session) {
		if s.State != StateBilling {
			return
		}
		proceed = true
		payer = s.Payer
		rate = s.RateMinor
		warnThreshold = s.WarnThresholdMinor
		alreadyWarned = s.Warned
	})
	if !proceed {
		return false
	}

	remaining, err := c.store.Debit(ctx, payer, rate)

	switch Decide(err, remaining, warnThreshold) {
	case ActionTerminate:
		c.log.Info("funds exhausted, terminating call", "call_id", callID, "payer", payer, "err", err)
		transitioned := false
		ent.Update(func(s *Session) {
			if s.State == StateBilling {
				s.State = StateTerminating
				transitioned = true
			}
		})
		if !transitioned {
			// A terminal notification won the race; teardown is theirs.
			return false
		}
		if terr := c.gateway.Terminate(ctx, callID); terr != nil {
			// The remote call may keep running, but we will not keep
			// billing a call we cannot account for.
			c.log.Error("terminate request failed", "call_id", callID, "err", terr)
		}
		c.registry.Remove(callID)
		ent.Update(func(s *Session) { s.State = StateClosed })
		if c.recorder != nil {
			c.recorder.RecordTermination(ctx, callID, payer, "insufficient funds")
		}
		return false

	case ActionWarn:
		now := c.clock().UTC()
		ent.Update(func(s *Session) {
			s.LastChargedAt = now
			s.Warned = true
		})
		if c.recorder != nil {
			c.recorder.RecordCharge(ctx, callID, payer, rate, remaining)
		}
		if !alreadyWarned {
			c.warn(ctx, callID, payer, remaining)
		}
		return true

	default:
		if err != nil {
			// Transient store failure: the same debit is retried on the
			// next scheduled tick. Not a strike toward termination.
			c.log.Warn("tick debit failed, retrying next tick", "call_id", callID, "err", err)
			return true
		}
		now := c.clock().UTC()
		ent.Update(func(s *Session) { s.LastChargedAt = now })
		if c.recorder != nil {
			c.recorder.RecordCharge(ctx, callID, payer, rate, remaining)
		}
		return true
	}
}

// warn emits the one-shot low-balance side effects. Both channels are
// best-effort: a failure is logged and never escalates to termination.
func (c *Controller) warn(ctx context.Context, callID, payer string, remaining int64) {
	if c.sink != nil {
		c.sink.Publish(LowBalanceWarning{
			Type:         "low_balance_warning",
			CallID:       callID,
			Payer:        payer,
			BalanceMinor: remaining,
			Message:      fmt.Sprintf("balance is low: %d remaining", remaining),
		})
	}
	if c.recorder != nil {
		c.recorder.RecordWarning(ctx, callID, payer, remaining)
	}
	if c.warnAssetURL != "" {
		if err := c.gateway.PlayAudio(ctx, callID, c.warnAssetURL); err != nil {
			c.log.Warn("warning playback failed", "call_id", callID, "err", err)
		}
	}
}
