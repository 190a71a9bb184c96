package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OutcomeOK is the outcome label for successful jobs and stages.
const OutcomeOK = "ok"

// Operation tracks the span and metrics of one job.
// A nil Metrics skips metric recording.
type Operation struct {
	Name      string
	JobID     string
	Source    string
	StartTime time.Time

	metrics *Metrics
	span    trace.Span

	mu     sync.Mutex
	open   map[int]func(status string, err error)
	nextID int
}

type operationKey struct{}

// StartOperation opens the job span and bumps the in-flight gauge.
func StartOperation(ctx context.Context, metrics *Metrics, name, jobID, source string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(
		attribute.String(AttrOperationName, name),
		attribute.String(AttrJobID, jobID),
		attribute.String(AttrJobSource, source),
	))
	op := &Operation{
		Name:      name,
		JobID:     jobID,
		Source:    source,
		StartTime: time.Now(),
		metrics:   metrics,
		span:      span,
	}
	if metrics != nil {
		metrics.JobStarted(ctx, source)
	}
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext returns the job operation carried by ctx, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Stage opens a child span for one pipeline stage. The returned function
// ends it and records the stage duration with the given status; calls
// after the first do nothing. Stages still open at End are ended there.
func (op *Operation) Stage(ctx context.Context, name string) (context.Context, func(status string, err error)) {
	start := time.Now()
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(
		attribute.String(AttrJobID, op.JobID),
		attribute.String(AttrStage, name),
	))

	op.mu.Lock()
	if op.open == nil {
		op.open = make(map[int]func(string, error))
	}
	id := op.nextID
	op.nextID++
	op.mu.Unlock()

	var once sync.Once
	end := func(status string, err error) {
		once.Do(func() {
			op.mu.Lock()
			delete(op.open, id)
			op.mu.Unlock()

			endSpan(span, status, err, time.Since(start))
			if op.metrics != nil {
				op.metrics.RecordStage(ctx, name, status, time.Since(start))
				if err != nil {
					op.metrics.RecordError(ctx, status, name)
				}
			}
		})
	}

	op.mu.Lock()
	op.open[id] = end
	op.mu.Unlock()
	return ctx, end
}

// End closes open stages and the job span, then records the outcome.
func (op *Operation) End(ctx context.Context, outcome string, err error) {
	op.mu.Lock()
	open := make([]func(string, error), 0, len(op.open))
	for _, end := range op.open {
		open = append(open, end)
	}
	op.mu.Unlock()
	for _, end := range open {
		end(outcome, err)
	}

	d := time.Since(op.StartTime)
	op.span.SetAttributes(attribute.String(AttrOutcome, outcome))
	endSpan(op.span, outcome, err, d)
	if op.metrics != nil {
		op.metrics.JobFinished(ctx, op.Source, outcome, d)
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}

func endSpan(span trace.Span, status string, err error, d time.Duration) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, d.Milliseconds()),
	)
	span.End()
}
