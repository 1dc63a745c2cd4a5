package config

import "time"

// CheckoutConfig contains checkout and payment simulation configuration.
// The storefront never contacts a real payment processor; the simulated
// gateway stands in for one behind the PaymentGateway port.
type CheckoutConfig struct {
	// ProcessingDelay is how long the simulated gateway takes per charge.
	ProcessingDelay time.Duration `env:"CHECKOUT_PROCESSING_DELAY" envDefault:"2s"`

	// DeclineCard is the card number the simulated gateway always declines.
	// Useful for exercising the failure path end to end.
	DeclineCard string `env:"CHECKOUT_DECLINE_CARD" envDefault:"4000000000000002"`
}

// Sanitize applies guardrails to checkout configuration values.
func (c *CheckoutConfig) Sanitize() {
	if c.ProcessingDelay < 0 {
		c.ProcessingDelay = 0
	}
	const maxDelay = 10 * time.Second
	if c.ProcessingDelay > maxDelay {
		c.ProcessingDelay = maxDelay
	}
}
