package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTwilioGatewayTerminate(t *testing.T) {
	var gotPath, gotStatus, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("form parse failed: %v", err)
		}
		gotStatus = r.PostFormValue("Status")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewTwilioGateway("AC123", "secret", WithBaseURL(srv.URL))
	if err := g.Terminate(context.Background(), "CA999"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := "/2010-04-01/Accounts/AC123/Calls/CA999.json"; gotPath != want {
		t.Fatalf("expected path %q, got %q", want, gotPath)
	}
	if gotStatus != "completed" {
		t.Fatalf("expected Status=completed, got %q", gotStatus)
	}
	if gotUser != "AC123" {
		t.Fatalf("expected basic auth user AC123, got %q", gotUser)
	}
}

func TestTwilioGatewayPlayAudio(t *testing.T) {
	var gotTwiml string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("form parse failed: %v", err)
		}
		gotTwiml = r.PostFormValue("Twiml")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewTwilioGateway("AC123", "secret", WithBaseURL(srv.URL))
	if err := g.PlayAudio(context.Background(), "CA999", "https://assets.example.com/warn.mp3"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(gotTwiml, "<Play>https://assets.example.com/warn.mp3</Play>") {
		t.Fatalf("unexpected twiml payload: %q", gotTwiml)
	}
}

func TestTwilioGatewayProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":20404}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewTwilioGateway("AC123", "secret", WithBaseURL(srv.URL))
	err := g.Terminate(context.Background(), "CA999")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestTwilioGatewayConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewTwilioGateway("AC123", "secret", WithBaseURL(srv.URL))
	err := g.Terminate(context.Background(), "CA999")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestTwilioGatewayEmptyCallID(t *testing.T) {
	g := NewTwilioGateway("AC123", "secret")
	if err := g.Terminate(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty call id")
	}
}
