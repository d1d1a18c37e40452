package telephony

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseVoiceWebhook(t *testing.T) {
	body := strings.NewReader("CallSid=CA123&From=%2B15551234567&To=%2B15557654321&CallStatus=ringing")
	r := httptest.NewRequest(http.MethodPost, "/webhooks/voice/incoming", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseVoiceWebhook(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.CallSid != "CA123" {
		t.Fatalf("expected CallSid, got %q", form.CallSid)
	}
	if form.From != "+15551234567" || form.To != "+15557654321" {
		t.Fatalf("unexpected from/to: %q %q", form.From, form.To)
	}
	if form.CallStatus != "ringing" {
		t.Fatalf("expected CallStatus ringing, got %q", form.CallStatus)
	}
}

func TestParseVoiceWebhookDialStatus(t *testing.T) {
	body := strings.NewReader("CallSid=CA123&DialCallStatus=answered&DialCallSid=CA456")
	r := httptest.NewRequest(http.MethodPost, "/webhooks/voice/dial-status", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseVoiceWebhook(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.DialCallStatus != "answered" || form.DialCallSid != "CA456" {
		t.Fatalf("unexpected dial fields: %q %q", form.DialCallStatus, form.DialCallSid)
	}
}
