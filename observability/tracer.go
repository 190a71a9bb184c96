package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kbukum/scribekit"

// Span names for the job pipeline.
const (
	SpanJob    = "job.transcribe"
	SpanIngest = "job.ingest"
	SpanEngine = "job.engine"
	SpanScore  = "job.score"
)

// Span attribute keys.
const (
	AttrServiceName   = "service.name"
	AttrOperationName = "operation.name"
	AttrJobID         = "job.id"
	AttrJobSource     = "job.source"
	AttrStage         = "job.stage"
	AttrOutcome       = "job.outcome"
	AttrDurationMs    = "duration_ms"
	AttrStatus        = "status"
	AttrErrorMessage  = "error.message"
)

// StartSpan starts a span on the global tracer provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// SetSpanAttribute sets key on the span in ctx. Values of unsupported types
// are dropped.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if kv, ok := toAttribute(key, value); ok {
		span.SetAttributes(kv)
	}
}

func toAttribute(key string, value any) (attribute.KeyValue, bool) {
	k := attribute.Key(key)
	switch v := value.(type) {
	case string:
		return k.String(v), true
	case bool:
		return k.Bool(v), true
	case int:
		return k.Int(v), true
	case int64:
		return k.Int64(v), true
	case float32:
		return k.Float64(float64(v)), true
	case float64:
		return k.Float64(v), true
	case []string:
		return k.StringSlice(v), true
	}
	return attribute.KeyValue{}, false
}

// SetSpanError marks the span in ctx failed with err.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
