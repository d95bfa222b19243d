package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StorefrontMetrics records catalog, checkout and session-stream activity.
// It satisfies the recorder interfaces of the catalog fetcher and the checkout service.
type StorefrontMetrics struct {
	catalogFetches  *Counter
	catalogDuration *Histogram
	catalogProducts *Histogram
	intents         *Counter
	intentAmount    *Histogram
	activeStreams   metric.Int64UpDownCounter
}

// NewStorefrontMetrics creates the storefront instruments on meter.
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	m := &StorefrontMetrics{}
	var err error

	if m.catalogFetches, err = NewCounter(meter, "catalog_fetches_total",
		"Total number of catalog category fetches", "{fetch}"); err != nil {
		return nil, err
	}
	if m.catalogDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "catalog_fetch_duration_seconds",
		Description: "Catalog category fetch latency",
		Unit:        "s",
		Boundaries:  LatencyBuckets,
	}); err != nil {
		return nil, err
	}
	if m.catalogProducts, err = NewHistogram(meter, HistogramOpts{
		Name:        "catalog_fetch_products",
		Description: "Number of products returned per category fetch",
		Unit:        "{product}",
		Boundaries:  []float64{0, 1, 5, 10, 25, 50, 100},
	}); err != nil {
		return nil, err
	}
	if m.intents, err = NewCounter(meter, "checkout_payment_intents_total",
		"Total number of payment intent creation attempts", "{intent}"); err != nil {
		return nil, err
	}
	if m.intentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "checkout_payment_intent_amount",
		Description: "Requested payment intent amount in minor units",
		Unit:        "{minor_unit}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.activeStreams, err = meter.Int64UpDownCounter("session_event_streams_active",
		metric.WithDescription("Open session event streams"),
		metric.WithUnit("{stream}")); err != nil {
		return nil, fmt.Errorf("failed to create up-down counter session_event_streams_active: %w", err)
	}
	return m, nil
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "success")
}

// RecordCatalogFetch records one category fetch.
func (m *StorefrontMetrics) RecordCatalogFetch(ctx context.Context, category string, count int, d time.Duration, err error) {
	attrs := []attribute.KeyValue{attribute.String("category", category), outcome(err)}
	m.catalogFetches.Inc(ctx, attrs...)
	m.catalogDuration.RecordDuration(ctx, d, attrs...)
	if err == nil {
		m.catalogProducts.Record(ctx, float64(count), attribute.String("category", category))
	}
}

// RecordPaymentIntent records one payment intent attempt.
func (m *StorefrontMetrics) RecordPaymentIntent(ctx context.Context, currency string, amount int64, err error) {
	cur := attribute.String("currency", strings.ToLower(currency))
	m.intents.Inc(ctx, cur, outcome(err))
	if err == nil {
		m.intentAmount.Record(ctx, float64(amount), cur)
	}
}

// StreamOpened counts a session event stream as open.
func (m *StorefrontMetrics) StreamOpened(ctx context.Context) {
	m.activeStreams.Add(ctx, 1)
}

// StreamClosed counts a session event stream as closed.
func (m *StorefrontMetrics) StreamClosed(ctx context.Context) {
	m.activeStreams.Add(ctx, -1)
}

// RegisterDBPoolMetrics exports connection pool statistics of db as observable gauges.
// The returned registration must be unregistered before db is closed.
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db_pool_open_connections",
		metric.WithDescription("Established connections, in use and idle"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_open_connections: %w", err)
	}
	inUse, err := meter.Int64ObservableGauge("db_pool_in_use_connections",
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_in_use_connections: %w", err)
	}
	idle, err := meter.Int64ObservableGauge("db_pool_idle_connections",
		metric.WithDescription("Idle connections"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge db_pool_idle_connections: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_count_total",
		metric.WithDescription("Connections waited for"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter db_pool_wait_count_total: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
