// Package ytdlp implements the youtube interfaces with the yt-dlp and
// ffmpeg command line tools.
package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/process"
	"github.com/kbukum/scribekit/util"
	"github.com/kbukum/scribekit/youtube"
)

const (
	defaultBinary = "yt-dlp"
	defaultFormat = "bestaudio/best"
)

// Config configures the yt-dlp binary.
type Config struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Format is the yt-dlp format selector for the audio track.
	Format    string   `yaml:"format" mapstructure:"format"`
	ExtraArgs []string `yaml:"extra_args" mapstructure:"extra_args"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
}

// Client runs yt-dlp for metadata and audio streams.
type Client struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

var (
	_ youtube.Resolver = (*Client)(nil)
	_ youtube.Streamer = (*Client)(nil)
)

// New creates a yt-dlp client.
func New(cfg Config, runner process.Runner) *Client {
	cfg.ApplyDefaults()
	return &Client{cfg: cfg, runner: runner, log: logger.WithComponent("ytdlp")}
}

// Available reports whether the yt-dlp binary is on PATH.
func (c *Client) Available() bool { return process.Available(c.cfg.Binary) }

// videoInfo is the subset of `yt-dlp -J` output we read.
type videoInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
}

// Resolve reads the video metadata without downloading media.
func (c *Client) Resolve(ctx context.Context, videoURL string) (*youtube.VideoMetadata, error) {
	args := append([]string{"-J", "--no-playlist", "--no-warnings", "--skip-download"}, c.cfg.ExtraArgs...)
	res, err := c.runner.Run(ctx, process.Command{
		Binary: c.cfg.Binary,
		Args:   append(args, videoURL),
	})
	if err != nil {
		return nil, toolError("yt-dlp", res, err)
	}

	var info videoInfo
	if err := json.Unmarshal(res.Stdout, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}
	return &youtube.VideoMetadata{
		Title:         util.SanitizeString(info.Title),
		LengthSeconds: int(math.Round(info.Duration)),
		Author:        util.SanitizeString(util.Coalesce(info.Uploader, info.Channel)),
	}, nil
}

// Stream writes the selected audio track to w as it downloads.
func (c *Client) Stream(ctx context.Context, videoURL string, w io.Writer) error {
	args := []string{"-f", c.cfg.Format, "--no-playlist", "--no-part", "--quiet", "--no-warnings", "-o", "-"}
	args = append(args, c.cfg.ExtraArgs...)
	cmd := process.Command{
		Binary: c.cfg.Binary,
		Args:   append(args, videoURL),
		Stdout: w,
	}
	c.log.Debug("streaming audio", logger.Fields("command", cmd.String()))

	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return toolError("yt-dlp", res, err)
	}
	return nil
}

// FFmpegConfig configures the ffmpeg binary.
type FFmpegConfig struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
}

// Transcoder converts an audio stream to mono 16 kHz PCM WAV with ffmpeg.
type Transcoder struct {
	binary string
	runner process.Runner
}

var _ youtube.Transcoder = (*Transcoder)(nil)

// NewTranscoder creates an ffmpeg transcoder.
func NewTranscoder(cfg FFmpegConfig, runner process.Runner) *Transcoder {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	return &Transcoder{binary: cfg.Binary, runner: runner}
}

// Available reports whether the ffmpeg binary is on PATH.
func (t *Transcoder) Available() bool { return process.Available(t.binary) }

// Transcode reads encoded audio from r until EOF and writes outPath.
func (t *Transcoder) Transcode(ctx context.Context, r io.Reader, outPath string) error {
	res, err := t.runner.Run(ctx, process.Command{
		Binary: t.binary,
		Args:   transcodeArgs(outPath),
		Stdin:  r,
	})
	if err != nil {
		return toolError("ffmpeg", res, err)
	}
	return nil
}

func transcodeArgs(outPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", "pipe:0",
		"-vn",
		"-ac", strconv.Itoa(youtube.Channels),
		"-ar", strconv.Itoa(youtube.SampleRate),
		"-c:a", "pcm_s16le",
		outPath,
	}
}

func toolError(tool string, res *process.Result, err error) error {
	if msg := res.StderrText(); msg != "" {
		return fmt.Errorf("%s: %s: %w", tool, msg, err)
	}
	return fmt.Errorf("%s: %w", tool, err)
}
