package payment

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds the keys of the Stripe account taking payments
type StripeConfig struct {
	// SecretKey is the server-side API key, standard (sk_test_xxx, sk_live_xxx)
	// or restricted (rk_test_xxx, rk_live_xxx)
	SecretKey string
	// PublishableKey is handed to Stripe.js in the browser (pk_test_xxx or pk_live_xxx)
	PublishableKey string
	// Currency is the ISO code used for every intent, lower case
	Currency string
}

// Validate checks that both keys are present and belong to the same mode
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if c.PublishableKey == "" {
		return fmt.Errorf("stripe: publishable key is required")
	}
	if c.Currency == "" {
		return fmt.Errorf("stripe: currency is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.IsTestMode() != strings.HasPrefix(c.PublishableKey, "pk_test_") {
		return fmt.Errorf("stripe: secret and publishable keys are from different modes")
	}
	return nil
}

// IsTestMode reports whether the secret key is a test key
func (c *StripeConfig) IsTestMode() bool {
	return isTestKey(c.SecretKey)
}

// isTestKey reports whether a standard or restricted secret key is a test key
func isTestKey(key string) bool {
	return strings.HasPrefix(key, "sk_test_") || strings.HasPrefix(key, "rk_test_")
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
