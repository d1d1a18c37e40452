package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
)

// Minimal TwiML builder. It intentionally avoids any provider SDK
// dependency; only the verbs we emit at the adapter boundary exist here.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

// Say speaks a short message to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Play streams an audio asset to the caller.
type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type Reject struct {
	XMLName xml.Name `xml:"Reject"`
	Reason  string   `xml:"reason,attr,omitempty"`
}

// Dial bridges the caller to a target number. AnswerOnBridge keeps the
// caller hearing ringback until the target actually picks up, so the
// answered signal marks real conversation start.
type Dial struct {
	XMLName        xml.Name `xml:"Dial"`
	CallerID       string   `xml:"callerId,attr,omitempty"`
	Action         string   `xml:"action,attr,omitempty"`
	Method         string   `xml:"method,attr,omitempty"`
	AnswerOnBridge bool     `xml:"answerOnBridge,attr,omitempty"`
	Number         string   `xml:"Number,omitempty"`
}

// Render serializes verbs into a TwiML document.
func Render(verbs ...any) (string, error) {
	if len(verbs) == 0 {
		return "", errors.New("telephony: no twiml verbs")
	}
	for _, v := range verbs {
		if d, ok := v.(Dial); ok && strings.TrimSpace(d.Number) == "" {
			return "", errors.New("telephony: dial target required")
		}
	}

	r := twimlResponse{Verbs: verbs}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderRejection is the standard refusal shape: tell the caller why,
// then hang up.
func RenderRejection(message string) (string, error) {
	return Render(Say{Text: message}, Hangup{})
}
