package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://jmefit.com").
	// Used for generating absolute URLs in redirects and external contexts.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// ReadyTimeoutSeconds bounds how long a protected request waits for the
	// session's auth manager to leave its initial loading state.
	ReadyTimeoutSeconds int `env:"HTTP_READY_TIMEOUT_SECONDS" envDefault:"5"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.ReadyTimeoutSeconds < 1 {
		h.ReadyTimeoutSeconds = 1
	}
}
