package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
)

// initTelemetry wires the OTLP trace, metric and log pipelines and the
// calculator's metric instruments. With telemetry disabled only the
// instruments are created, against the no-op global provider.
func initTelemetry(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	if cfg.TelemetryDisabled {
		if err := calculator.InitMetrics(); err != nil {
			return nil, err
		}
		return func(context.Context) error { return nil }, nil
	}

	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		return nil, err
	}

	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		return nil, errors.Join(err, traceShutdown(ctx))
	}

	logShutdown, err := observability.InitLogging(ctx)
	if err != nil {
		return nil, errors.Join(err, metricShutdown(ctx), traceShutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(logShutdown(ctx), metricShutdown(ctx), traceShutdown(ctx))
	}, nil
}

// initMetrics initialises all metric providers and application-specific
// metric instruments. Add new domain InitMetrics calls here as the project grows.
func initMetrics(ctx context.Context) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
