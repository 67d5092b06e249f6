package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/subtitler/logger"
)

// MeterConfig points the OTLP/HTTP metric exporter at a collector.
type MeterConfig struct {
	Identity
	Endpoint string
	Insecure bool
	// Interval between exports. Zero keeps the SDK default.
	Interval time.Duration
}

// InitMeter replaces the global meter provider with a periodic exporter.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("metric resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("metrics enabled", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instrument names. Durations are in seconds.
const (
	MetricHTTPRequests        = "subtitler.http.requests"
	MetricHTTPRequestDuration = "subtitler.http.request.duration"
	MetricHTTPActive          = "subtitler.http.requests.active"
	MetricOperations          = "subtitler.operations"
	MetricOperationDuration   = "subtitler.operation.duration"
	MetricErrors              = "subtitler.errors"
	MetricRuns                = "subtitler.runs"
	MetricRunDuration         = "subtitler.run.duration"
)

// Metrics holds the HTTP, pipeline step and run instruments. A nil
// *Metrics is valid at every call site that checks for it.
type Metrics struct {
	httpRequests      metric.Int64Counter
	httpDuration      metric.Float64Histogram
	httpActive        metric.Int64UpDownCounter
	operations        metric.Int64Counter
	operationDuration metric.Float64Histogram
	errors            metric.Int64Counter
	runs              metric.Int64Counter
	runDuration       metric.Float64Histogram
}

// instruments collects the first creation error so NewMetrics reads as a
// list of instruments.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc))
	b.fail(name, err)
	return c
}

func (b *instruments) gauge(name, desc string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	b.fail(name, err)
	return c
}

func (b *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.fail(name, err)
	return h
}

func (b *instruments) fail(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("creating %s: %w", name, err)
	}
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	b := &instruments{meter: meter}
	m := &Metrics{
		httpRequests:      b.counter(MetricHTTPRequests, "HTTP requests served"),
		httpDuration:      b.seconds(MetricHTTPRequestDuration, "HTTP request latency"),
		httpActive:        b.gauge(MetricHTTPActive, "HTTP requests in flight"),
		operations:        b.counter(MetricOperations, "Pipeline steps and provider calls"),
		operationDuration: b.seconds(MetricOperationDuration, "Pipeline step and provider call latency"),
		errors:            b.counter(MetricErrors, "Failures by type and component"),
		runs:              b.counter(MetricRuns, "Translation runs by outcome"),
		runDuration:       b.seconds(MetricRunDuration, "End-to-end translation run latency"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.httpActive.Add(ctx, 1)
}

// RecordRequestEnd decrements the in-flight count and records a completed
// request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, method, status string, duration time.Duration) {
	m.httpActive.Add(ctx, -1)
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.httpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("method", method),
	))
}

// RecordOperation counts one step or provider call. service is the owner
// ("pipeline" or a provider name), operation the step.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError counts a failure by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}

// RecordRun counts one finished run. code is the error code of a failed
// run and empty otherwise.
func (m *Metrics) RecordRun(ctx context.Context, status, code string, duration time.Duration) {
	attrs := []attribute.KeyValue{attribute.String("status", status)}
	if code != "" {
		attrs = append(attrs, attribute.String("error_code", code))
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
