package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SpendSummaryRequest requests aggregated spend metrics for one payer.
// Spend is derived from the immutable billing event trail.
type SpendSummaryRequest struct {
	Payer string    `json:"payer"`
	Range TimeRange `json:"range"`
}

type SpendSummary struct {
	Payer string `json:"payer"`

	ChargedMinor  int64 `json:"charged_minor"`
	CreditedMinor int64 `json:"credited_minor"`
	NetDeltaMinor int64 `json:"net_delta_minor"`

	ChargeCount  int `json:"charge_count"`
	Warnings     int `json:"warnings"`
	Terminations int `json:"terminations"`

	// MeteredCalls counts distinct calls that produced at least one charge.
	MeteredCalls int `json:"metered_calls"`
}
