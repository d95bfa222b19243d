package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestStorefrontMetrics_RecordCatalogFetch(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewStorefrontMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCatalogFetch(ctx, "kitchenware", 4, 20*time.Millisecond, nil)
	m.RecordCatalogFetch(ctx, "kitchenware", 0, 5*time.Millisecond, errors.New("boom"))
	m.RecordCatalogFetch(ctx, "one-off-art", 2, 10*time.Millisecond, nil)

	metrics := collect(t, reader)

	fetches := metrics["catalog_fetches_total"]
	assert.Equal(t, int64(2), sumByAttr(t, fetches, "category", "kitchenware"))
	assert.Equal(t, int64(1), sumByAttr(t, fetches, "outcome", "error"))
	assert.Equal(t, int64(2), sumByAttr(t, fetches, "outcome", "success"))

	products, ok := metrics["catalog_fetch_products"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	var total float64
	for _, dp := range products.DataPoints {
		count += dp.Count
		total += dp.Sum
	}
	assert.Equal(t, uint64(2), count, "failed fetches are not counted as product totals")
	assert.Equal(t, float64(6), total)

	duration, ok := metrics["catalog_fetch_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, duration.DataPoints, 3)
}

func TestStorefrontMetrics_RecordPaymentIntent(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewStorefrontMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPaymentIntent(ctx, "GBP", 2599, nil)
	m.RecordPaymentIntent(ctx, "gbp", 1000, errors.New("card_declined"))

	metrics := collect(t, reader)
	intents := metrics["checkout_payment_intents_total"]
	assert.Equal(t, int64(2), sumByAttr(t, intents, "currency", "gbp"))
	assert.Equal(t, int64(1), sumByAttr(t, intents, "outcome", "error"))

	amounts, ok := metrics["checkout_payment_intent_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, amounts.DataPoints, 1)
	assert.Equal(t, uint64(1), amounts.DataPoints[0].Count)
	assert.Equal(t, float64(2599), amounts.DataPoints[0].Sum)
}

func TestStorefrontMetrics_Streams(t *testing.T) {
	mp, reader := newTestMeter(t)
	m, err := NewStorefrontMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.StreamOpened(ctx)
	m.StreamOpened(ctx)
	m.StreamClosed(ctx)

	sum, ok := collect(t, reader)["session_event_streams_active"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	assert.False(t, sum.IsMonotonic)
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mp, reader := newTestMeter(t)
	reg, err := RegisterDBPoolMetrics(mp.Meter("test"), db)
	require.NoError(t, err)

	metrics := collect(t, reader)
	for _, name := range []string{
		"db_pool_open_connections",
		"db_pool_in_use_connections",
		"db_pool_idle_connections",
		"db_pool_wait_count_total",
	} {
		assert.Contains(t, metrics, name)
	}

	assert.NoError(t, reg.Unregister())
}
