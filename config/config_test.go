package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default HTTP addr :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.Mode != AuthModeHosted {
		t.Errorf("expected default auth mode hosted, got %q", cfg.Auth.Mode)
	}
	if cfg.Auth.AdminEmail != "admin@jmefit.com" {
		t.Errorf("expected default admin email admin@jmefit.com, got %q", cfg.Auth.AdminEmail)
	}
	if cfg.Auth.MinPasswordLength != 6 {
		t.Errorf("expected min password length 6, got %d", cfg.Auth.MinPasswordLength)
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("unexpected postgres defaults: %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    AuthMode
		expectError bool
	}{
		{name: "hosted", input: "hosted", expected: AuthModeHosted},
		{name: "dev", input: "dev", expected: AuthModeDev},
		{name: "uppercase accepted", input: "DEV", expected: AuthModeDev},
		{name: "unknown rejected", input: "oauth", expectError: true},
		{name: "empty rejected", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, mode)
			}
		})
	}
}

func TestAuthConfig_Sanitize(t *testing.T) {
	a := AuthConfig{
		SessionTTL:        -time.Hour,
		MinPasswordLength: 3,
		AdminEmail:        "  Admin@JMEFit.com ",
	}
	a.Sanitize()

	if a.SessionTTL != 12*time.Hour {
		t.Errorf("expected session TTL guardrail 12h, got %v", a.SessionTTL)
	}
	if a.MinPasswordLength != 6 {
		t.Errorf("expected min password floor 6, got %d", a.MinPasswordLength)
	}
	if a.AdminEmail != "admin@jmefit.com" {
		t.Errorf("expected normalized admin email, got %q", a.AdminEmail)
	}
}

func TestCheckoutConfig_Sanitize(t *testing.T) {
	c := CheckoutConfig{ProcessingDelay: time.Minute}
	c.Sanitize()
	if c.ProcessingDelay != 10*time.Second {
		t.Errorf("expected processing delay clamped to 10s, got %v", c.ProcessingDelay)
	}

	c = CheckoutConfig{ProcessingDelay: -time.Second}
	c.Sanitize()
	if c.ProcessingDelay != 0 {
		t.Errorf("expected negative delay clamped to 0, got %v", c.ProcessingDelay)
	}
}
