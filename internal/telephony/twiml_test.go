package telephony

import (
	"strings"
	"testing"
)

func TestRenderDial(t *testing.T) {
	out, err := Render(Dial{
		CallerID:       "+15550000000",
		Action:         "https://example.com/webhooks/voice/dial-status",
		Method:         "POST",
		AnswerOnBridge: true,
		Number:         "+15557654321",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, want := range []string{
		`callerId="+15550000000"`,
		`action="https://example.com/webhooks/voice/dial-status"`,
		`answerOnBridge="true"`,
		"<Number>+15557654321</Number>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, out)
		}
	}
}

func TestRenderDialRequiresTarget(t *testing.T) {
	if _, err := Render(Dial{CallerID: "+15550000000"}); err == nil {
		t.Fatalf("expected error for empty dial target")
	}
}

func TestRenderRejection(t *testing.T) {
	out, err := RenderRejection("No more credits.")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "<Say>No more credits.</Say>") {
		t.Fatalf("expected Say verb in twiml:\n%s", out)
	}
	if !strings.Contains(out, "<Hangup") {
		t.Fatalf("expected Hangup verb in twiml:\n%s", out)
	}
	// Say must precede Hangup or the caller never hears the reason.
	if strings.Index(out, "<Say>") > strings.Index(out, "<Hangup") {
		t.Fatalf("expected Say before Hangup:\n%s", out)
	}
}

func TestRenderPlay(t *testing.T) {
	out, err := Render(Play{URL: "https://assets.example.com/low-balance.mp3"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "<Play>https://assets.example.com/low-balance.mp3</Play>") {
		t.Fatalf("unexpected twiml:\n%s", out)
	}
}

func TestRenderRejectsEmpty(t *testing.T) {
	if _, err := Render(); err == nil {
		t.Fatalf("expected error for empty response")
	}
}
