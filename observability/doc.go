// Package observability wires OpenTelemetry tracing and metrics.
//
// Init installs OTLP/HTTP exporters when enabled. When disabled the global
// no-op providers stay in place, so StartSpan and the Metrics recorders can
// be called unconditionally.
//
//	shutdown, metrics, err := observability.Init(ctx, cfg, "subtitler", version.Version, "production")
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.extract")
//	defer span.End()
package observability
