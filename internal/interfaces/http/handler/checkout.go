package handler

import (
	"context"
	"net/http"

	appcheckout "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/checkout"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/telemetry"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// IntentCreator creates a payment intent for a cart and returns its client secret
type IntentCreator interface {
	CreateIntent(ctx context.Context, cart appcheckout.Cart) (string, error)
}

// CheckoutHandler bridges the browser cart to the payment provider.
// Its responses use a bare {"message"} body rather than the API envelope
// because Stripe.js callers read clientSecret at the top level.
type CheckoutHandler struct {
	checkout       IntentCreator
	publishableKey string
	logger         *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout IntentCreator, publishableKey string, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		checkout:       checkout,
		publishableKey: publishableKey,
		logger:         logger,
	}
}

// CreatePaymentIntent handles every method on /api/create-payment-intent.
// Only POST reaches the provider.
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, dto.MessageResponse{Message: "Method not allowed"})
		return
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "checkout.create_payment_intent")
	defer span.End()

	var cart appcheckout.Cart
	if err := c.ShouldBindJSON(&cart); err != nil {
		telemetry.RecordError(span, err)
		h.logger.Error("Error creating payment intent", zap.String("request_id", getRequestID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Internal server error"})
		return
	}
	span.SetAttributes(attribute.Int64("checkout.amount", cart.Amount))

	secret, err := h.checkout.CreateIntent(ctx, cart)
	if err != nil {
		telemetry.RecordError(span, err)
		h.logger.Error("Error creating payment intent", zap.String("request_id", getRequestID(c)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{ClientSecret: secret})
}

// StripeConfig returns the publishable key used to initialise Stripe.js
func (h *CheckoutHandler) StripeConfig(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StripeConfigResponse{PublishableKey: h.publishableKey})
}
