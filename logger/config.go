package logger

import (
	"fmt"
	"slices"
)

// Config is the logging section of a service config.
type Config struct {
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	Output      string `yaml:"output" mapstructure:"output"`
	NoColor     bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp   bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller      bool   `yaml:"caller" mapstructure:"caller"`
}

var (
	levels  = []string{"trace", "debug", "info", "warn", "error"}
	formats = []string{FormatJSON, FormatConsole, FormatPretty}
	outputs = []string{"stdout", "stderr"}
)

// ApplyDefaults selects info-level console output on stdout. Timestamps are
// always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate checks level, format and output against the supported values.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name, value string
		allowed     []string
	}{
		{"level", c.Level, levels},
		{"format", c.Format, formats},
		{"output", c.Output, outputs},
	} {
		if !slices.Contains(f.allowed, f.value) {
			return fmt.Errorf("logging.%s must be one of %v (got: %s)", f.name, f.allowed, f.value)
		}
	}
	return nil
}
