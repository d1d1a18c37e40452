package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "callmeter", SSLMode: "disable"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
		Twilio: TwilioConfig{
			AccountSID:    "ACxxxx",
			AuthToken:     "token",
			CallerNumber:  "+15550001111",
			PublicBaseURL: "https://voice.example.com",
		},
	}
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	c.Auth.JWTIssuer = "callmeter"
	c.Auth.JWTAudience = "api"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	c.DB.SSLMode = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_TwilioRequired(t *testing.T) {
	c := validConfig()
	c.Twilio.CallerNumber = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for missing caller number")
	}

	c = validConfig()
	c.Twilio.PublicBaseURL = "voice.example.com"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for relative base URL")
	}
}

func TestValidate_BillingDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Billing.DefaultRateMinor != 3 {
		t.Fatalf("expected default rate 3, got %d", c.Billing.DefaultRateMinor)
	}
	if c.Billing.TickInterval != time.Minute {
		t.Fatalf("expected default tick interval 1m, got %v", c.Billing.TickInterval)
	}
}

func TestValidate_BalanceBackend(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Billing.BalanceBackend != "postgres" {
		t.Fatalf("expected postgres default, got %q", c.Billing.BalanceBackend)
	}

	c = validConfig()
	c.Billing.BalanceBackend = "cassandra"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestValidate_RejectsNegativeWarnThreshold(t *testing.T) {
	c := validConfig()
	c.Billing.WarnThresholdMinor = -1
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for negative warn threshold")
	}
}
