package observability

import (
	"context"
	"errors"
	"fmt"
)

// ShutdownFunc flushes and stops the exporters started by Init.
type ShutdownFunc func(ctx context.Context) error

func nop(context.Context) error { return nil }

// Init returns the shared Metrics instruments and, when cfg.Enabled, starts
// span and metric export first. Disabled telemetry records into the global
// no-op providers and shuts down as a no-op.
func Init(ctx context.Context, cfg Config, serviceName, serviceVersion, environment string) (ShutdownFunc, *Metrics, error) {
	shutdown := ShutdownFunc(nop)
	if cfg.Enabled {
		var err error
		if shutdown, err = startExport(ctx, cfg, Identity{Name: serviceName, Version: serviceVersion, Environment: environment}); err != nil {
			return nop, nil, err
		}
	}

	metrics, err := NewMetrics(Meter(serviceName))
	if err != nil {
		_ = shutdown(ctx)
		return nop, nil, err
	}
	return shutdown, metrics, nil
}

func startExport(ctx context.Context, cfg Config, id Identity) (ShutdownFunc, error) {
	tp, err := InitTracer(ctx, TracerConfig{Identity: id, Endpoint: cfg.Endpoint, Insecure: cfg.Insecure, SampleRate: cfg.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	mp, err := InitMeter(ctx, MeterConfig{Identity: id, Endpoint: cfg.Endpoint, Insecure: cfg.Insecure, Interval: cfg.MetricInterval})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
