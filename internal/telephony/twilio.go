package telephony

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTwilioBaseURL = "https://api.twilio.com"

// TwilioGateway drives live calls through the Twilio REST API.
// It deliberately avoids the vendor SDK; the two calls we need are
// plain form POSTs against the 2010-04-01 Calls resource.
type TwilioGateway struct {
	accountSID string
	authToken  string
	baseURL    string
	client     *http.Client
}

type TwilioOption func(*TwilioGateway)

// WithBaseURL overrides the API origin. Used by tests.
func WithBaseURL(u string) TwilioOption {
	return func(g *TwilioGateway) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) TwilioOption {
	return func(g *TwilioGateway) { g.client = c }
}

func NewTwilioGateway(accountSID, authToken string, opts ...TwilioOption) *TwilioGateway {
	g := &TwilioGateway{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    defaultTwilioBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *TwilioGateway) Name() string { return "twilio" }

// Terminate moves the call to status "completed", which hangs up both legs.
func (g *TwilioGateway) Terminate(ctx context.Context, callID string) error {
	return g.updateCall(ctx, callID, url.Values{"Status": {"completed"}})
}

// PlayAudio interrupts the live call with inline TwiML that plays the
// asset into the bridged audio.
func (g *TwilioGateway) PlayAudio(ctx context.Context, callID, assetURL string) error {
	twiml, err := Render(Play{URL: assetURL})
	if err != nil {
		return err
	}
	return g.updateCall(ctx, callID, url.Values{"Twiml": {twiml}})
}

func (g *TwilioGateway) updateCall(ctx context.Context, callID string, form url.Values) error {
	if callID == "" {
		return fmt.Errorf("telephony: empty call id")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls/%s.json",
		g.baseURL, url.PathEscape(g.accountSID), url.PathEscape(callID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrGatewayUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
