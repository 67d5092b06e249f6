package provider

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/observability"
)

// Middleware wraps a RequestResponse with cross-cutting behaviour.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares so the first one is outermost:
// Chain(a, b, c)(p) is a(b(c(p))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

type executeFunc[I, O any] func(ctx context.Context, input I, next RequestResponse[I, O]) (O, error)

// intercepted keeps the inner name and availability and routes Execute
// through fn.
type intercepted[I, O any] struct {
	RequestResponse[I, O]
	fn executeFunc[I, O]
}

func (w *intercepted[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return w.fn(ctx, input, w.RequestResponse)
}

func around[I, O any](fn executeFunc[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &intercepted[I, O]{RequestResponse: inner, fn: fn}
	}
}

// WithLogging logs each call with the provider name and duration. Failures
// log at error level with the application error code when there is one.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return around(func(ctx context.Context, input I, next RequestResponse[I, O]) (O, error) {
		start := time.Now()
		out, err := next.Execute(ctx, input)

		fields := logger.DurationFields(next.Name(), time.Since(start))
		fields["provider"] = next.Name()
		l := log.WithContext(ctx)
		if err == nil {
			l.Debug("provider execute ok", fields)
			return out, nil
		}
		if appErr, ok := apperrors.AsAppError(err); ok {
			fields["code"] = string(appErr.Code)
		}
		l.Error("provider execute failed", logger.MergeWithError(fields, err))
		return out, err
	})
}

// WithTracing opens a client span named "{serviceName}.{providerName}"
// around each call and marks it on error.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return around(func(ctx context.Context, input I, next RequestResponse[I, O]) (O, error) {
		ctx, span := observability.StartSpan(ctx, serviceName+"."+next.Name(), trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
		observability.SetSpanAttribute(ctx, observability.AttrProviderName, next.Name())

		out, err := next.Execute(ctx, input)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(appErr.Code))
			}
			observability.SetSpanError(ctx, err)
		}
		return out, err
	})
}

// WithMetrics records an operation sample per call and an error count on
// failure. Nil metrics disables it.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	if metrics == nil {
		return func(inner RequestResponse[I, O]) RequestResponse[I, O] { return inner }
	}
	return around(func(ctx context.Context, input I, next RequestResponse[I, O]) (O, error) {
		start := time.Now()
		out, err := next.Execute(ctx, input)

		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
			metrics.RecordError(ctx, "provider", next.Name())
		}
		metrics.RecordOperation(ctx, next.Name(), "execute", status, time.Since(start))
		return out, err
	})
}
