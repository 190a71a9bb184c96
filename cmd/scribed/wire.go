package main

import (
	"context"
	"fmt"

	"github.com/kbukum/scribekit/ingest"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/process"
	"github.com/kbukum/scribekit/provider"
	"github.com/kbukum/scribekit/server"
	"github.com/kbukum/scribekit/transcription"
	"github.com/kbukum/scribekit/transcription/whisper"
	"github.com/kbukum/scribekit/youtube"
	"github.com/kbukum/scribekit/youtube/ytdlp"
)

// services is the wired object graph.
type services struct {
	jobs     *job.Service
	server   *server.Server
	checkers []observability.HealthChecker
}

// wire builds the service graph from cfg. runner executes every external
// tool, so tests can pass a fake.
func wire(cfg *Config, runner process.Runner, log *logger.Logger) (*services, error) {
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	engines := transcription.NewRegistry()
	engines.RegisterFactory(whisper.ProviderName, whisper.Factory(cfg.Engine.Whisper, runner))
	base, err := engines.Resolve(cfg.Engine.Provider, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	engine := provider.Chain(
		provider.WithTracing[transcription.Request, *transcription.Output](serviceName),
		provider.WithMetrics[transcription.Request, *transcription.Output](metrics),
		provider.WithLogging[transcription.Request, *transcription.Output](log.WithComponent("engine")),
	)(base)

	ytClient := ytdlp.New(cfg.YouTube.YtDlp, runner)
	transcoder := ytdlp.NewTranscoder(cfg.YouTube.FFmpeg, runner)
	downloader := youtube.NewDownloader(cfg.YouTube.Config, ytClient, ytClient, transcoder,
		youtube.WithRateLimiter(cfg.Resilience.MetadataLimiter("youtube.metadata")),
	)

	gate := cfg.Resilience.JobBulkhead("jobs")
	jobs := job.NewService(cfg.Job, ingest.New(cfg.Ingest, downloader), engine,
		job.WithBulkhead(gate),
		job.WithMetrics(metrics),
		job.WithMetadataSource(downloader),
		job.WithLogger(log.WithComponent("job")),
	)

	checkers := append(jobs.HealthCheckers(),
		observability.AvailabilityCheck("tool.yt-dlp", func(context.Context) bool { return ytClient.Available() }),
		observability.AvailabilityCheck("tool.ffmpeg", func(context.Context) bool { return transcoder.Available() }),
	)

	srv := server.New(cfg.Server, log)
	srv.RegisterDefaultEndpoints(cfg.Name, gate, checkers...)
	srv.RegisterRoutes(jobs)

	return &services{jobs: jobs, server: srv, checkers: checkers}, nil
}
