package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the job pipeline instruments.
type Metrics struct {
	jobsTotal         metric.Int64Counter
	jobsActive        metric.Int64UpDownCounter
	jobDuration       metric.Float64Histogram
	stageDuration     metric.Float64Histogram
	confidence        metric.Float64Histogram
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.jobsTotal, err = meter.Int64Counter("scribe.jobs.total",
		metric.WithDescription("Completed transcription jobs by source and outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating scribe.jobs.total counter: %w", err)
	}
	if m.jobsActive, err = meter.Int64UpDownCounter("scribe.jobs.active",
		metric.WithDescription("Jobs currently in flight"),
	); err != nil {
		return nil, fmt.Errorf("creating scribe.jobs.active gauge: %w", err)
	}
	if m.jobDuration, err = meter.Float64Histogram("scribe.job.duration",
		metric.WithDescription("End-to-end job duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating scribe.job.duration histogram: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("scribe.stage.duration",
		metric.WithDescription("Duration of ingest, engine and scoring stages"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating scribe.stage.duration histogram: %w", err)
	}
	if m.confidence, err = meter.Float64Histogram("scribe.result.confidence",
		metric.WithDescription("Confidence of successful transcriptions"),
	); err != nil {
		return nil, fmt.Errorf("creating scribe.result.confidence histogram: %w", err)
	}
	if m.operationTotal, err = meter.Int64Counter("operation.total",
		metric.WithDescription("Total number of provider operations"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.total counter: %w", err)
	}
	if m.operationDuration, err = meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of provider operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by kind and component"),
	); err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &m, nil
}

// JobStarted increments the in-flight job count.
func (m *Metrics) JobStarted(ctx context.Context, source string) {
	m.jobsActive.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// JobFinished decrements in-flight jobs and records the outcome.
func (m *Metrics) JobFinished(ctx context.Context, source, outcome string, duration time.Duration) {
	m.jobsActive.Add(ctx, -1, metric.WithAttributes(attribute.String("source", source)))
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	)
	m.jobsTotal.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records the duration of one pipeline stage.
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordConfidence records the score of a successful result.
func (m *Metrics) RecordConfidence(ctx context.Context, source string, confidence float64) {
	m.confidence.Record(ctx, confidence, metric.WithAttributes(attribute.String("source", source)))
}

// RecordOperation records a provider execution.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	m.operationTotal.Add(ctx, 1, attrs)
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by kind and component.
func (m *Metrics) RecordError(ctx context.Context, kind, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("component", component),
	))
}
