package provider

import (
	"context"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
)

// WithLogging logs every call with its duration. Failures are logged at
// warn level with their error kind.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return Around(func(name string, next ExecuteFunc[I, O]) ExecuteFunc[I, O] {
		return func(ctx context.Context, input I) (O, error) {
			start := time.Now()
			out, err := next(ctx, input)

			fields := logger.MergeWithDuration(logger.Fields("provider", name), time.Since(start))
			l := log.WithContext(ctx)
			if err != nil {
				fields["kind"] = string(errors.KindOf(err))
				l.WithError(err).Warn("provider execute failed", fields)
			} else {
				l.Debug("provider execute ok", fields)
			}
			return out, err
		}
	})
}

// WithMetrics counts calls and records their duration. A failure is also
// counted as an error of its kind against the provider.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return Around(func(name string, next ExecuteFunc[I, O]) ExecuteFunc[I, O] {
		return func(ctx context.Context, input I) (O, error) {
			start := time.Now()
			out, err := next(ctx, input)

			status := observability.OutcomeOK
			if err != nil {
				status = string(errors.KindOf(err))
				metrics.RecordError(ctx, status, name)
			}
			metrics.RecordOperation(ctx, name, "execute", status, time.Since(start))
			return out, err
		}
	})
}

// WithTracing runs each call in a span named "<service>.<provider>".
func WithTracing[I, O any](service string) Middleware[I, O] {
	return Around(func(name string, next ExecuteFunc[I, O]) ExecuteFunc[I, O] {
		return func(ctx context.Context, input I) (O, error) {
			ctx, span := observability.StartSpan(ctx, service+"."+name)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrServiceName, service)
			observability.SetSpanAttribute(ctx, observability.AttrOperationName, name)

			out, err := next(ctx, input)
			observability.SetSpanError(ctx, err)
			return out, err
		}
	})
}
