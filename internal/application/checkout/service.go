// Package checkout forwards a cart to the payment provider and returns the
// client secret the browser uses to confirm payment.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// MetadataOrderItems is the metadata key holding the serialized cart items
const MetadataOrderItems = "order_items"

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "gbp"

// Cart is the checkout payload posted by the browser.
// Items are opaque and only serialized into the intent metadata.
type Cart struct {
	Items  json.RawMessage `json:"items"`
	Amount int64           `json:"amount"`
}

// IntentRequest describes the payment intent to create
type IntentRequest struct {
	Amount                  int64
	Currency                string
	AutomaticPaymentMethods bool
	Metadata                map[string]string
}

// Intent is the provider's answer to an IntentRequest
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentProvider creates payment intents at the payment provider
type IntentProvider interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// Recorder records checkout outcomes
type Recorder interface {
	RecordPaymentIntent(ctx context.Context, currency string, amount int64, err error)
}

// Service creates one payment intent per checkout call.
// Calls are not deduplicated: two identical carts create two intents.
type Service struct {
	provider IntentProvider
	currency string
	logger   *zap.Logger
	recorder Recorder
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithCurrency sets the currency code of created intents
func WithCurrency(currency string) ServiceOption {
	return func(s *Service) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a new checkout Service
func NewService(provider IntentProvider, logger *zap.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider: provider,
		currency: DefaultCurrency,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Currency returns the currency code used for intents
func (s *Service) Currency() string {
	return s.currency
}

// CreateIntent creates a payment intent for cart and returns its client secret.
// The amount is passed through as given.
func (s *Service) CreateIntent(ctx context.Context, cart Cart) (string, error) {
	req := IntentRequest{
		Amount:                  cart.Amount,
		Currency:                s.currency,
		AutomaticPaymentMethods: true,
		Metadata:                map[string]string{},
	}
	items, err := serializeItems(cart.Items)
	if err != nil {
		return "", fmt.Errorf("checkout: failed to serialize cart items: %w", err)
	}
	if items != "" {
		req.Metadata[MetadataOrderItems] = items
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, req)
	if s.recorder != nil {
		s.recorder.RecordPaymentIntent(ctx, s.currency, cart.Amount, err)
	}
	if err != nil {
		return "", fmt.Errorf("checkout: failed to create payment intent: %w", err)
	}

	s.logger.Info("Payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount", cart.Amount),
		zap.String("currency", s.currency),
	)
	return intent.ClientSecret, nil
}

// serializeItems compacts the raw items JSON. Absent items produce "".
func serializeItems(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
