package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/resilience"
)

const (
	// DefaultMaxDuration is the longest video accepted, in seconds.
	DefaultMaxDuration = 3600

	defaultTimeout         = 15 * time.Minute
	defaultMetadataTimeout = 30 * time.Second

	// OutputExt is the container the transcoder produces.
	OutputExt = ".wav"
	// SampleRate and Channels are what the speech engine expects.
	SampleRate = 16000
	Channels   = 1
)

// VideoMetadata describes a remote video.
type VideoMetadata struct {
	Title         string `json:"title"`
	LengthSeconds int    `json:"lengthSeconds"`
	Author        string `json:"author"`
}

// Resolver looks up metadata for a video URL.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string) (*VideoMetadata, error)
}

// Streamer writes the best audio-only track of a video to w.
type Streamer interface {
	Stream(ctx context.Context, videoURL string, w io.Writer) error
}

// Transcoder reads encoded audio from r and writes mono 16 kHz WAV to outPath.
type Transcoder interface {
	Transcode(ctx context.Context, r io.Reader, outPath string) error
}

// Config holds the downloader limits.
type Config struct {
	// MaxDurationSeconds rejects longer videos before any transfer.
	MaxDurationSeconds int `yaml:"max_duration_seconds" mapstructure:"max_duration_seconds"`
	// Timeout bounds stream plus transcode.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MetadataTimeout bounds a single metadata lookup.
	MetadataTimeout time.Duration `yaml:"metadata_timeout" mapstructure:"metadata_timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxDurationSeconds == 0 {
		c.MaxDurationSeconds = DefaultMaxDuration
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MetadataTimeout == 0 {
		c.MetadataTimeout = defaultMetadataTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxDurationSeconds < 1 {
		return fmt.Errorf("youtube.max_duration_seconds must be positive (got: %d)", c.MaxDurationSeconds)
	}
	if c.Timeout < 0 || c.MetadataTimeout < 0 {
		return fmt.Errorf("youtube timeouts must not be negative")
	}
	return nil
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithRateLimiter paces metadata lookups.
func WithRateLimiter(rl *resilience.RateLimiter) Option {
	return func(d *Downloader) { d.limiter = rl }
}

// Downloader fetches remote video audio into a job scope.
type Downloader struct {
	cfg        Config
	resolver   Resolver
	streamer   Streamer
	transcoder Transcoder
	limiter    *resilience.RateLimiter
	log        *logger.Logger
}

// NewDownloader creates a Downloader. Unset config fields take their defaults.
func NewDownloader(cfg Config, resolver Resolver, streamer Streamer, transcoder Transcoder, opts ...Option) *Downloader {
	cfg.ApplyDefaults()
	d := &Downloader{
		cfg:        cfg,
		resolver:   resolver,
		streamer:   streamer,
		transcoder: transcoder,
		log:        logger.WithComponent("youtube"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metadata validates videoURL and resolves its metadata.
func (d *Downloader) Metadata(ctx context.Context, videoURL string) (*VideoMetadata, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return nil, err
	}
	return d.resolve(ctx, CanonicalURL(id))
}

// Fetch downloads the audio of videoURL into a new file registered with
// scope and returns its path with the video metadata. Videos longer than
// the configured ceiling are rejected before streaming starts.
func (d *Downloader) Fetch(ctx context.Context, scope *lifecycle.Scope, videoURL string) (string, *VideoMetadata, error) {
	id, err := VideoID(videoURL)
	if err != nil {
		return "", nil, err
	}
	canonical := CanonicalURL(id)

	meta, err := d.resolve(ctx, canonical)
	if err != nil {
		return "", nil, err
	}
	if meta.LengthSeconds > d.cfg.MaxDurationSeconds {
		return "", meta, errors.InvalidInput("url", "video too long").WithDetails(map[string]any{
			"length_seconds": meta.LengthSeconds,
			"max_seconds":    d.cfg.MaxDurationSeconds,
		})
	}

	out := scope.NewPath("youtube", OutputExt)

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := d.pipe(ctx, canonical, out.Path); err != nil {
		return "", meta, err
	}
	d.log.WithContext(ctx).Info("remote audio ready", logger.MergeWithDuration(logger.Fields(
		"video_id", id,
		"length_seconds", meta.LengthSeconds,
		logger.FieldPath, out.Path,
	), time.Since(start)))
	return out.Path, meta, nil
}

func (d *Downloader) resolve(ctx context.Context, canonical string) (*VideoMetadata, error) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			if ctxErr := errors.FromContext(ctx, "metadata"); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.ServiceUnavailable("video metadata lookup")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.MetadataTimeout)
	defer cancel()

	meta, err := d.resolver.Resolve(ctx, canonical)
	if err != nil {
		if ctxErr := errors.FromContext(ctx, "metadata"); ctxErr != nil {
			return nil, ctxErr
		}
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.DownloadFailure("failed to fetch video metadata", err)
	}
	if meta == nil {
		return nil, errors.DownloadFailure("failed to fetch video metadata", fmt.Errorf("empty metadata"))
	}
	return meta, nil
}

type stepResult struct {
	stage string
	err   error
}

// pipe connects the streamer to the transcoder through an OS pipe. The
// first step to fail decides the error kind; a failed transcode stops the
// stream.
func (d *Downloader) pipe(ctx context.Context, videoURL, outPath string) error {
	pr, pw, err := os.Pipe()
	if err != nil {
		return errors.IOFailure("audio pipe creation", err)
	}

	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()

	results := make(chan stepResult, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		err := d.streamer.Stream(streamCtx, videoURL, pw)
		results <- stepResult{stage: "stream", err: err}
		pw.Close()
	}()
	go func() {
		defer wg.Done()
		err := d.transcoder.Transcode(ctx, pr, outPath)
		results <- stepResult{stage: "transcode", err: err}
		pr.Close()
		if err != nil {
			stopStream()
		}
	}()
	wg.Wait()
	close(results)

	var first stepResult
	for r := range results {
		if r.err != nil {
			first = r
			break
		}
	}

	if ctxErr := errors.FromContext(ctx, "download"); ctxErr != nil {
		return ctxErr
	}
	switch {
	case first.err == nil:
		return nil
	case first.stage == "stream":
		return errors.DownloadFailure("audio stream failed", first.err)
	default:
		return errors.ConversionFailure("audio conversion failed", first.err)
	}
}
