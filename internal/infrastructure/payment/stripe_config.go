package payment

import (
	"fmt"
	"strings"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

// StripeConfig holds configuration for Stripe Checkout
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// WebhookSecret verifies webhook signatures (whsec_xxx)
	WebhookSecret string

	// Currency is charged for every session, e.g. "usd"
	Currency string

	// SuccessURL may contain the {CHECKOUT_SESSION_ID} placeholder
	SuccessURL string
	CancelURL  string
}

// StripeConfigFrom adapts the application config section
func StripeConfigFrom(cfg config.StripeConfig) *StripeConfig {
	return &StripeConfig{
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		Currency:      strings.ToLower(cfg.Currency),
		SuccessURL:    cfg.SuccessURL,
		CancelURL:     cfg.CancelURL,
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}
	if c.SuccessURL == "" || c.CancelURL == "" {
		return fmt.Errorf("stripe: success and cancel urls are required")
	}
	return nil
}
