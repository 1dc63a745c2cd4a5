package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeHosted uses the hosted identity service (REST + OIDC token verification).
	AuthModeHosted AuthMode = "hosted"
	// AuthModeDev uses the in-process dev identity provider (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "hosted", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: hosted, dev)", v)
	}
}

// HostedIdentityConfig contains configuration for the hosted identity service.
type HostedIdentityConfig struct {
	// BaseURL is the identity service REST endpoint.
	BaseURL string `env:"BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`

	// APIKey authenticates requests to the identity service.
	APIKey string `env:"API_KEY"`

	// IssuerURL is the OIDC issuer used to verify returned ID tokens.
	IssuerURL string `env:"ISSUER_URL"`

	// TokenURL is the OAuth2 endpoint used to refresh ID tokens.
	TokenURL string `env:"TOKEN_URL" envDefault:"https://securetoken.googleapis.com/v1/token"`

	// Audience is the expected audience claim on ID tokens (the project ID).
	Audience string `env:"AUDIENCE"`
}

// DevIdentityConfig controls the dev identity provider.
// Used when AUTH_MODE=dev for development and testing.
type DevIdentityConfig struct {
	Email    string `env:"EMAIL"    envDefault:"dev@jmefit.com"`
	Password string `env:"PASSWORD" envDefault:"devdevdev"`
	Name     string `env:"NAME"     envDefault:"Dev User"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"hosted"`

	// Hosted identity service configuration (used when Mode=hosted).
	Hosted HostedIdentityConfig `envPrefix:"IDENTITY_"`

	// Dev identity configuration (used when Mode=dev).
	Dev DevIdentityConfig `envPrefix:"DEV_AUTH_"`

	// AdminEmail is the single allowlisted admin address. Profiles created
	// for this email get the admin role; everyone else gets user.
	// NOTE: a single hardcoded allowlist entry is a placeholder access
	// control mechanism, not a real authorization system.
	AdminEmail string `env:"AUTH_ADMIN_EMAIL" envDefault:"admin@jmefit.com"`

	// SessionTTL bounds the lifetime of browser sessions and the
	// cart/selection state keyed to them.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"12h"`

	// MinPasswordLength is enforced client-side before the identity
	// provider is contacted.
	MinPasswordLength int `env:"AUTH_MIN_PASSWORD_LENGTH" envDefault:"6"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 12 * time.Hour
	}
	const minPasswordFloor = 6
	if a.MinPasswordLength < minPasswordFloor {
		a.MinPasswordLength = minPasswordFloor
	}
	a.AdminEmail = strings.ToLower(strings.TrimSpace(a.AdminEmail))
}
