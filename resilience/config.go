package resilience

import (
	"fmt"
	"time"
)

// Config is the concurrency section of the service config.
type Config struct {
	// MaxConcurrentJobs caps jobs in flight across all sources.
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs"`
	// QueueWait is how long a job may wait for a free slot. Zero rejects
	// immediately when the service is saturated.
	QueueWait time.Duration `yaml:"queue_wait" mapstructure:"queue_wait"`
	// MetadataRate is remote metadata lookups per second.
	MetadataRate float64 `yaml:"metadata_rate" mapstructure:"metadata_rate"`
	// MetadataBurst is the lookup burst size.
	MetadataBurst int `yaml:"metadata_burst" mapstructure:"metadata_burst"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrentJobs == 0 {
		c.MaxConcurrentJobs = 2
	}
	if c.MetadataRate == 0 {
		c.MetadataRate = 2
	}
	if c.MetadataBurst == 0 {
		c.MetadataBurst = 5
	}
}

// Validate checks the limits.
func (c *Config) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max_concurrent_jobs must be at least 1 (got: %d)", c.MaxConcurrentJobs)
	}
	if c.QueueWait < 0 {
		return fmt.Errorf("queue_wait must not be negative")
	}
	if c.MetadataRate <= 0 || c.MetadataBurst < 1 {
		return fmt.Errorf("metadata_rate and metadata_burst must be positive")
	}
	return nil
}

// JobBulkhead builds the job concurrency gate.
func (c Config) JobBulkhead(name string) *Bulkhead {
	return NewBulkhead(BulkheadConfig{
		Name:          name,
		MaxConcurrent: c.MaxConcurrentJobs,
		MaxWait:       c.QueueWait,
	})
}

// MetadataLimiter builds the metadata lookup limiter.
func (c Config) MetadataLimiter(name string) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		Name:  name,
		Rate:  c.MetadataRate,
		Burst: c.MetadataBurst,
	})
}
