package observability

import (
	"fmt"
	"time"
)

// Config is the telemetry section of the service config.
type Config struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the telemetry settings.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	if c.MetricInterval < 0 {
		return fmt.Errorf("metric_interval must not be negative")
	}
	return nil
}
