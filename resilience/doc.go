// Package resilience bounds how much work the service accepts.
//
// A Bulkhead caps the number of transcription jobs running at once so that
// external tools never oversubscribe the host. A RateLimiter paces remote
// metadata lookups. Neither retries: a failed job is reported to the caller
// as-is.
//
//	limits := resilience.Config{MaxConcurrentJobs: 2}
//	limits.ApplyDefaults()
//	jobs := limits.JobBulkhead("jobs")
//	err := jobs.Execute(ctx, func() error { return run(ctx) })
package resilience
