package main

import (
	"fmt"

	"github.com/kbukum/scribekit/config"
	"github.com/kbukum/scribekit/ingest"
	"github.com/kbukum/scribekit/job"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/process"
	"github.com/kbukum/scribekit/resilience"
	"github.com/kbukum/scribekit/server"
	"github.com/kbukum/scribekit/transcription/whisper"
	"github.com/kbukum/scribekit/util"
	"github.com/kbukum/scribekit/youtube"
	"github.com/kbukum/scribekit/youtube/ytdlp"
)

const serviceName = "scribed"

// EngineConfig selects and configures the speech engine.
type EngineConfig struct {
	Provider string         `yaml:"provider" mapstructure:"provider"`
	Whisper  whisper.Config `yaml:"whisper" mapstructure:"whisper"`
}

// YouTubeConfig groups the downloader limits and its tools.
type YouTubeConfig struct {
	youtube.Config `yaml:",inline" mapstructure:",squash"`
	YtDlp          ytdlp.Config       `yaml:"ytdlp" mapstructure:"ytdlp"`
	FFmpeg         ytdlp.FFmpegConfig `yaml:"ffmpeg" mapstructure:"ffmpeg"`
}

// Config is the scribed service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Process       process.Config       `yaml:"process" mapstructure:"process"`
	Engine        EngineConfig         `yaml:"engine" mapstructure:"engine"`
	YouTube       YouTubeConfig        `yaml:"youtube" mapstructure:"youtube"`
	Ingest        ingest.Config        `yaml:"ingest" mapstructure:"ingest"`
	Job           job.Config           `yaml:"job" mapstructure:"job"`
	Resilience    resilience.Config    `yaml:"resilience" mapstructure:"resilience"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Engine.Provider == "" {
		c.Engine.Provider = whisper.ProviderName
	}
	c.Engine.Whisper.ApplyDefaults()
	c.YouTube.Config.ApplyDefaults()
	c.YouTube.YtDlp.ApplyDefaults()
	c.YouTube.FFmpeg.Binary = util.Coalesce(c.YouTube.FFmpeg.Binary, "ffmpeg")
	c.Ingest.ApplyDefaults()
	c.Job.ApplyDefaults()
	c.Resilience.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate checks every section and names the failing one.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Whisper.Validate(); err != nil {
		return fmt.Errorf("engine.whisper: %w", err)
	}
	checks := []struct {
		section string
		check   func() error
	}{
		{"youtube", c.YouTube.Config.Validate},
		{"ingest", c.Ingest.Validate},
		{"job", c.Job.Validate},
		{"resilience", c.Resilience.Validate},
		{"observability", c.Observability.Validate},
		{"server", c.Server.Validate},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("%s: %w", ch.section, err)
		}
	}
	return nil
}
