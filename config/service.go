package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/scribekit/logger"
)

// Environments a service may run in.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig is the section every service config embeds:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Engine EngineConfig  `yaml:"engine" mapstructure:"engine"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills the environment and logging defaults. Development
// turns debug on, and the logger is tagged with the service name.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = Environments[0]
	}
	c.Debug = c.Debug || c.Environment == "development"
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the name, environment and logging section.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
