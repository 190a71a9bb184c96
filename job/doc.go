// Package job runs transcription jobs end to end.
//
// A job ingests one audio source into a fresh lifecycle.Scope, runs the
// speech engine, scores and assembles the result, and releases every
// temporary resource before the outcome is returned. Release is deferred,
// so it also happens on validation failures, engine failures, timeouts,
// caller cancellation and panics.
//
//	svc := job.NewService(cfg, ingestor, engine,
//		job.WithBulkhead(limits.JobBulkhead("jobs")),
//		job.WithMetadataSource(downloader),
//	)
//	result, err := svc.TranscribeFromRemoteVideo(ctx, "https://youtu.be/dQw4w9WgXcQ")
package job
