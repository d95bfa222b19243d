package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})
	return recorder, tp
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func newTracedRouter(tp *sdktrace.TracerProvider, resolver SessionResolver) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestID(),
		Tracing(TracingConfig{
			ServiceName:    "jack-mack-shop",
			Enabled:        true,
			TracerProvider: tp,
			SkipPaths:      []string{"/health"},
		}),
		Session(resolver, CookieOptions{}),
		SpanAttributes(),
		SpanErrorMarker(),
	)
	router.GET("/kitchenware", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.POST("/api/create-payment-intent", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return router
}

func TestTracing_RecordsRouteSpanWithSessionAttributes(t *testing.T) {
	recorder, tp := setupTestTracer(t)
	resolver := &stubResolver{tokens: map[string]session.User{
		"tok": {ID: "user-7", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	router := newTracedRouter(tp, resolver)

	req := httptest.NewRequest(http.MethodGet, "/kitchenware", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	req.Header.Set("Authorization", "Bearer tok")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/kitchenware")

	v, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", v.AsString())
	v, ok = spanAttr(spans[0], "user_id")
	require.True(t, ok)
	assert.Equal(t, "user-7", v.AsString())
	_, ok = spanAttr(spans[0], "session_key")
	assert.True(t, ok)
}

func TestTracing_SkipPaths(t *testing.T) {
	recorder, tp := setupTestTracer(t)
	router := newTracedRouter(tp, &stubResolver{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, recorder.Ended())
}

func TestSpanErrorMarker(t *testing.T) {
	recorder, tp := setupTestTracer(t)
	router := newTracedRouter(tp, &stubResolver{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	v, ok := spanAttr(spans[0], "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusNotFound), v.AsInt64())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	called := false
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}), SpanAttributes(), SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) {
		called = true
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
