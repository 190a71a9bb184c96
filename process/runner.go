package process

import (
	"context"
	"time"
)

// Runner executes commands. Tool invokers depend on this instead of Run so
// tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// Config holds process defaults shared by every tool.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM→SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
}

// Executor is the Runner backed by real child processes.
type Executor struct {
	config Config
}

// NewExecutor creates an Executor applying cfg to every command.
func NewExecutor(cfg Config) *Executor {
	return &Executor{config: cfg}
}

// Run executes cmd, filling in the configured grace period.
func (e *Executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && e.config.GracePeriod > 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	return Run(ctx, cmd)
}
