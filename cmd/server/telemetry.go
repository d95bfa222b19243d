package main

import (
	"context"
	"fmt"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/config"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/logger"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// providers groups the OpenTelemetry providers owned by the server
type providers struct {
	tracer *telemetry.TracerProvider
	meters *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider
}

// setupTelemetry starts the trace, metric and log providers and returns a
// logger that also forwards to the OTLP log pipeline. bootstrap is used
// until the bridged logger exists and is returned on error.
func setupTelemetry(ctx context.Context, cfg *config.Config, bootstrap *zap.Logger) (*providers, *zap.Logger, error) {
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	tp, err := telemetry.NewTracerProvider(ctx, telCfg, bootstrap)
	if err != nil {
		return nil, bootstrap, fmt.Errorf("tracer provider: %w", err)
	}
	mp, err := telemetry.NewMeterProvider(ctx, telCfg, bootstrap)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, bootstrap, fmt.Errorf("meter provider: %w", err)
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telCfg, bootstrap)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, bootstrap, fmt.Errorf("logger provider: %w", err)
	}

	p := &providers{tracer: tp, meters: mp, logs: lp}
	if !lp.IsEnabled() {
		return p, bootstrap, nil
	}

	otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: lp,
		Level:          logger.ParseLevel(cfg.Log.Level),
	})
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, otelCore)
	if err != nil {
		p.shutdown(ctx, bootstrap)
		return nil, bootstrap, fmt.Errorf("bridged logger: %w", err)
	}
	_ = bootstrap.Sync()
	return p, log, nil
}

// shutdown flushes the providers. The log provider goes last so that
// shutdown errors of the others are still exported.
func (p *providers) shutdown(ctx context.Context, log *zap.Logger) {
	if err := p.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := p.meters.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	_ = log.Sync()
	if err := p.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
