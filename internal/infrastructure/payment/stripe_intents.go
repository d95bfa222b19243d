// Package payment talks to the Stripe API on behalf of checkout.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/checkout"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"
)

// StripeIntentAdapter creates PaymentIntents through the Stripe API
type StripeIntentAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeIntentAdapter validates config and initializes the Stripe client
func NewStripeIntentAdapter(config *StripeConfig, logger *zap.Logger) (*StripeIntentAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.InitStripeClient()

	return &StripeIntentAdapter{
		config: config,
		logger: logger,
	}, nil
}

// PublishableKey returns the key Stripe.js is initialized with
func (a *StripeIntentAdapter) PublishableKey() string {
	return a.config.PublishableKey
}

// CreatePaymentIntent creates exactly one PaymentIntent. Nothing is retried.
func (a *StripeIntentAdapter) CreatePaymentIntent(ctx context.Context, req checkout.IntentRequest) (*checkout.Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = a.config.Currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	if req.AutomaticPaymentMethods {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		fields := []zap.Field{
			zap.Int64("amount", req.Amount),
			zap.String("currency", currency),
			zap.Error(err),
		}
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			fields = append(fields,
				zap.String("stripe_error_type", string(stripeErr.Type)),
				zap.String("stripe_error_code", string(stripeErr.Code)),
				zap.String("stripe_request_id", stripeErr.RequestID),
			)
		}
		a.logger.Error("Failed to create Stripe payment intent", fields...)
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	a.logger.Debug("Created Stripe payment intent",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
	)

	return &checkout.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

var _ checkout.IntentProvider = (*StripeIntentAdapter)(nil)
