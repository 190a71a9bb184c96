package job

import (
	"fmt"
	"time"

	"github.com/kbukum/scribekit/transcription"
)

// Config holds job settings.
type Config struct {
	// ScratchDir holds per-job temporary files. Empty means os.TempDir().
	ScratchDir string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
	// Language is passed to the engine; empty or "auto" detects it.
	Language string `yaml:"language" mapstructure:"language"`
	// Timeout bounds a whole job on top of the per-step limits. Zero
	// disables it.
	Timeout time.Duration               `yaml:"timeout" mapstructure:"timeout"`
	Scoring transcription.ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = transcription.LanguageAuto
	}
	c.Scoring.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("job.timeout must not be negative")
	}
	return c.Scoring.Validate()
}
