package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	appcatalog "github.com/Lucid-Directions/jack-mack-artisan-shop/internal/application/catalog"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"INVALID_TOKEN", ErrCodeTokenInvalid},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range domainErrorCodes {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "domain code %s maps to %s which has no status", domainCode, apiCode)
	}
}

func TestErrorResponses(t *testing.T) {
	t.Run("request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "missing", "req-1")
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("validation details", func(t *testing.T) {
		resp := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
			{Field: "category", Message: "This field is required"},
		})
		body, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"success": false,
			"error": {
				"code": "ERR_VALIDATION",
				"message": "Request validation failed",
				"request_id": "req-2",
				"details": [{"field": "category", "message": "This field is required"}]
			}
		}`, string(body))
	})

	t.Run("success omits error", func(t *testing.T) {
		body, err := json.Marshal(NewSuccessResponse(map[string]int{"n": 1}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"success": true, "data": {"n": 1}}`, string(body))
	})
}

func TestCheckoutBodies(t *testing.T) {
	body, err := json.Marshal(CheckoutResponse{ClientSecret: "pi_1_secret_2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientSecret": "pi_1_secret_2"}`, string(body))

	body, err = json.Marshal(MessageResponse{Message: "Method not allowed"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message": "Method not allowed"}`, string(body))

	body, err = json.Marshal(StripeConfigResponse{PublishableKey: "pk_test_1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"publishableKey": "pk_test_1"}`, string(body))
}

func TestToCategoryResponse(t *testing.T) {
	page := appcatalog.CategoryPage{Category: catalog.CategoryFor(catalog.CategoryKitchenware)}

	resp := ToCategoryResponse(page)
	assert.Equal(t, "kitchenware", resp.Slug)
	assert.Equal(t, "Everyday Use", resp.Badge)
	assert.NotNil(t, resp.Cards, "empty listings encode as []")
	assert.Nil(t, resp.Notification)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"cards":[]`)
}
