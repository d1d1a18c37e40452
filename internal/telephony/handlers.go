package telephony

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"callmeter/internal/balance"
	"callmeter/internal/directory"
	"callmeter/internal/metering"
	"callmeter/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Caller-facing refusal announcements.
const (
	msgServiceUnavailable = "Service unavailable."
	msgAccountNotFound    = "Account not found."
	msgNoCredits          = "No more credits."
)

type numberResolver interface {
	Resolve(ctx context.Context, number string) (directory.ServiceNumber, error)
}

type balanceReader interface {
	GetBalance(ctx context.Context, payer string) (int64, error)
}

type callNotifier interface {
	HandleNotification(ctx context.Context, callID string, ev metering.Event, params metering.StartParams) error
}

// WebhookHandler converts provider voice webhooks to metering
// notifications and answers with TwiML.
//
// The incoming-call admission check (known number, known payer, enough
// balance for one charge) is advisory; the authoritative charge happens
// in the metering controller once the callee answers.
type WebhookHandler struct {
	Directory numberResolver
	Balance   balanceReader
	Meter     callNotifier

	// CallerNumber is the platform number presented to the callee.
	CallerNumber string
	// DialStatusURL is the absolute action URL for <Dial> outcome callbacks.
	DialStatusURL string

	DefaultRateMinor   int64
	TickInterval       time.Duration
	WarnThresholdMinor int64
}

// HandleIncomingCall admits or refuses a new caller and, when admitted,
// bridges them to the service owner's phone.
func (h *WebhookHandler) HandleIncomingCall(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" || form.From == "" || form.To == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing call fields"})
		return
	}
	ctx := c.Request.Context()

	sn, err := h.Directory.Resolve(ctx, form.To)
	if err != nil {
		if !errors.Is(err, directory.ErrNumberNotFound) {
			log.Error("service number lookup failed", "to", form.To, "err", err)
		}
		h.refuse(c, log, msgServiceUnavailable)
		return
	}

	bal, err := h.Balance.GetBalance(ctx, form.From)
	switch {
	case errors.Is(err, balance.ErrPayerNotFound):
		h.refuse(c, log, msgAccountNotFound)
		return
	case err != nil:
		log.Error("balance lookup failed", "payer", form.From, "err", err)
		h.refuse(c, log, msgServiceUnavailable)
		return
	}
	if bal < h.rateFor(sn) {
		h.refuse(c, log, msgNoCredits)
		return
	}

	twiml, err := Render(Dial{
		CallerID:       h.CallerNumber,
		Action:         h.DialStatusURL,
		Method:         http.MethodPost,
		AnswerOnBridge: true,
		Number:         sn.OwnerPhone,
	})
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}

	log.Info("call admitted", "call_id", form.CallSid, "payer", form.From, "service", sn.Number)
	writeTwiML(c, twiml)
}

// HandleDialStatus receives the <Dial> outcome. An answered dial starts
// metering; anything else closes whatever session may exist.
func (h *WebhookHandler) HandleDialStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing call sid"})
		return
	}
	ctx := c.Request.Context()

	ev, ok := eventFromStatus(form.DialCallStatus)
	if !ok {
		log.Warn("unknown dial status", "call_id", form.CallSid, "status", form.DialCallStatus)
		writeEmptyTwiML(c)
		return
	}

	switch ev {
	case metering.EventAnswered, metering.EventInProgress:
		// Re-resolve the rate from the directory record; callback
		// parameters are never trusted to carry pricing.
		sn, err := h.Directory.Resolve(ctx, form.To)
		if err != nil {
			log.Error("service number lookup failed on dial status", "to", form.To, "err", err)
			h.refuse(c, log, msgServiceUnavailable)
			return
		}
		params := metering.StartParams{
			Payer:              form.From,
			RateMinor:          h.rateFor(sn),
			TickInterval:       h.TickInterval,
			WarnThresholdMinor: h.WarnThresholdMinor,
		}
		if err := h.Meter.HandleNotification(ctx, form.CallSid, metering.EventAnswered, params); err != nil {
			if errors.Is(err, balance.ErrInsufficientFunds) || errors.Is(err, balance.ErrPayerNotFound) {
				h.refuse(c, log, msgNoCredits)
				return
			}
			log.Error("metering start failed", "call_id", form.CallSid, "err", err)
			h.refuse(c, log, msgServiceUnavailable)
			return
		}
		writeEmptyTwiML(c)
	default:
		if ev.Terminal() {
			if err := h.Meter.HandleNotification(ctx, form.CallSid, ev, metering.StartParams{}); err != nil {
				log.Error("metering stop failed", "call_id", form.CallSid, "err", err)
			}
		}
		twiml, err := Render(Hangup{})
		if err != nil {
			log.Error("twiml render failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
			return
		}
		writeTwiML(c, twiml)
	}
}

// HandleCallStatus receives caller-leg lifecycle callbacks. Only
// terminal transitions are forwarded; repeats and out-of-order delivery
// are absorbed by the controller.
func (h *WebhookHandler) HandleCallStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseVoiceWebhook(c.Request)
	if err != nil {
		log.Warn("voice webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.CallSid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing call sid"})
		return
	}

	ev, ok := eventFromStatus(form.CallStatus)
	if ok && ev.Terminal() {
		if err := h.Meter.HandleNotification(c.Request.Context(), form.CallSid, ev, metering.StartParams{}); err != nil {
			log.Error("metering stop failed", "call_id", form.CallSid, "err", err)
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *WebhookHandler) rateFor(sn directory.ServiceNumber) int64 {
	if sn.RatePerTickMinor > 0 {
		return sn.RatePerTickMinor
	}
	return h.DefaultRateMinor
}

func (h *WebhookHandler) refuse(c *gin.Context, log *slog.Logger, msg string) {
	twiml, err := RenderRejection(msg)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	writeTwiML(c, twiml)
}

func writeTwiML(c *gin.Context, twiml string) {
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

// writeEmptyTwiML answers with an empty <Response/>, leaving the
// bridged call untouched.
func writeEmptyTwiML(c *gin.Context) {
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<Response></Response>")
}

func eventFromStatus(s string) (metering.Event, bool) {
	switch ev := metering.Event(s); ev {
	case metering.EventInitiated, metering.EventRinging, metering.EventAnswered,
		metering.EventInProgress, metering.EventCompleted, metering.EventFailed,
		metering.EventBusy, metering.EventNoAnswer, metering.EventCanceled:
		return ev, true
	default:
		return "", false
	}
}
