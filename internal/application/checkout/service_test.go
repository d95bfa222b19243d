package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockIntentProvider is a mock implementation of IntentProvider
type MockIntentProvider struct {
	mock.Mock
}

func (m *MockIntentProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Intent), args.Error(1)
}

type fakeRecorder struct {
	calls int
	last  error
}

func (r *fakeRecorder) RecordPaymentIntent(_ context.Context, _ string, _ int64, err error) {
	r.calls++
	r.last = err
}

func TestService_CreateIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one intent with metadata", func(t *testing.T) {
		provider := new(MockIntentProvider)
		expected := IntentRequest{
			Amount:                  2599,
			Currency:                "gbp",
			AutomaticPaymentMethods: true,
			Metadata:                map[string]string{"order_items": `[{"sku":"A","qty":1}]`},
		}
		provider.On("CreatePaymentIntent", ctx, expected).
			Return(&Intent{ID: "pi_123", ClientSecret: "pi_123_secret_abc"}, nil).Once()

		secret, err := NewService(provider, zap.NewNop()).CreateIntent(ctx, Cart{
			Items:  json.RawMessage(`[ {"sku": "A", "qty": 1} ]`),
			Amount: 2599,
		})

		require.NoError(t, err)
		assert.Equal(t, "pi_123_secret_abc", secret)
		provider.AssertExpectations(t)
		provider.AssertNumberOfCalls(t, "CreatePaymentIntent", 1)
	})

	t.Run("configured currency", func(t *testing.T) {
		provider := new(MockIntentProvider)
		provider.On("CreatePaymentIntent", ctx, mock.MatchedBy(func(r IntentRequest) bool {
			return r.Currency == "eur"
		})).Return(&Intent{ClientSecret: "s"}, nil)

		svc := NewService(provider, nil, WithCurrency("eur"))
		_, err := svc.CreateIntent(ctx, Cart{Amount: 100})

		require.NoError(t, err)
		assert.Equal(t, "eur", svc.Currency())
	})

	t.Run("missing items omit metadata key", func(t *testing.T) {
		provider := new(MockIntentProvider)
		provider.On("CreatePaymentIntent", ctx, mock.MatchedBy(func(r IntentRequest) bool {
			_, ok := r.Metadata[MetadataOrderItems]
			return !ok
		})).Return(&Intent{ClientSecret: "s"}, nil)

		_, err := NewService(provider, nil).CreateIntent(ctx, Cart{Amount: 100})
		require.NoError(t, err)
	})

	t.Run("no deduplication", func(t *testing.T) {
		provider := new(MockIntentProvider)
		provider.On("CreatePaymentIntent", ctx, mock.Anything).Return(&Intent{ClientSecret: "s"}, nil)

		svc := NewService(provider, nil)
		cart := Cart{Items: json.RawMessage(`[]`), Amount: 500}
		_, _ = svc.CreateIntent(ctx, cart)
		_, _ = svc.CreateIntent(ctx, cart)

		provider.AssertNumberOfCalls(t, "CreatePaymentIntent", 2)
	})

	t.Run("provider error is wrapped", func(t *testing.T) {
		provider := new(MockIntentProvider)
		provider.On("CreatePaymentIntent", ctx, mock.Anything).Return(nil, errors.New("card_declined: secret detail"))
		rec := &fakeRecorder{}

		_, err := NewService(provider, nil, WithRecorder(rec)).CreateIntent(ctx, Cart{Amount: 100})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create payment intent")
		assert.Equal(t, 1, rec.calls)
		assert.Error(t, rec.last)
	})

	t.Run("invalid items never reach provider", func(t *testing.T) {
		provider := new(MockIntentProvider)

		_, err := NewService(provider, nil).CreateIntent(ctx, Cart{Items: json.RawMessage(`[{`), Amount: 100})

		require.Error(t, err)
		provider.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
	})

	t.Run("logs created intent", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		provider := new(MockIntentProvider)
		provider.On("CreatePaymentIntent", ctx, mock.Anything).Return(&Intent{ID: "pi_9", ClientSecret: "s"}, nil)

		_, err := NewService(provider, zap.New(core)).CreateIntent(ctx, Cart{Amount: 100})
		require.NoError(t, err)

		entries := logs.FilterMessage("Payment intent created").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "pi_9", entries[0].ContextMap()["payment_intent_id"])
	})
}
