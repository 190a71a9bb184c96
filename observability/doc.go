// Package observability wires OpenTelemetry tracing and metrics for
// transcription jobs.
//
// Exporters are OTLP over HTTP and are only started when enabled in config.
// Without Setup the global otel providers are no-ops, so instrumented code
// runs unchanged in tests.
//
//	shutdown, err := observability.Setup(ctx, cfg, "scribed", version.Version, "production")
//	defer shutdown(ctx)
//
//	metrics, _ := observability.NewMetrics(observability.Meter("scribed"))
//	ctx, op := observability.StartOperation(ctx, metrics, observability.SpanJob, jobID, "upload")
//	defer op.End(ctx, "ok", nil)
//
// Health reports aggregate component checks for the /health endpoint.
package observability
