package telephony

import (
	"net/http"
	"strings"
)

// VoiceWebhookForm captures the subset of voice webhook fields we care
// about. Twilio sends application/x-www-form-urlencoded by default.
// Ref: https://www.twilio.com/docs/voice/twiml
//
// Keep it minimal and provider-adapter-only. Billing decisions are not
// made here.
type VoiceWebhookForm struct {
	CallSid    string
	AccountSid string
	From       string
	To         string
	Direction  string
	ApiVersion string
	Timestamp  string

	// CallStatus is the caller-leg lifecycle status on status callbacks.
	CallStatus string

	// DialCallStatus reports the outcome of a <Dial> on its action callback.
	DialCallStatus string
	DialCallSid    string
}

func ParseVoiceWebhook(r *http.Request) (VoiceWebhookForm, error) {
	if err := r.ParseForm(); err != nil {
		return VoiceWebhookForm{}, err
	}
	f := VoiceWebhookForm{
		CallSid:        r.PostFormValue("CallSid"),
		AccountSid:     r.PostFormValue("AccountSid"),
		From:           normalizePhone(r.PostFormValue("From")),
		To:             normalizePhone(r.PostFormValue("To")),
		Direction:      r.PostFormValue("Direction"),
		ApiVersion:     r.PostFormValue("ApiVersion"),
		Timestamp:      r.PostFormValue("Timestamp"),
		CallStatus:     r.PostFormValue("CallStatus"),
		DialCallStatus: r.PostFormValue("DialCallStatus"),
		DialCallSid:    r.PostFormValue("DialCallSid"),
	}
	return f, nil
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	// Twilio sometimes sends "anonymous" or empty; keep as-is.
	return s
}
