package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kbukum/scribekit/logger"
)

const defaultGracePeriod = 5 * time.Second

// ErrNotFound means the binary is not on PATH or not executable.
var ErrNotFound = errors.New("process: binary not found")

// Run starts cmd and waits for it. A non-zero exit, a missing binary and
// context cancellation are all errors; the Result is returned with them
// whenever the process was attempted.
//
// When ctx ends the child's process group gets SIGTERM, and SIGKILL once
// the grace period passes.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: binary is required")
	}

	var stdout bytes.Buffer
	stderr := &tailBuffer{limit: stderrCapture}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // callers choose the tool
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin
	c.Stdout = &stdout
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	}
	c.Stderr = stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error { return syscall.Kill(-c.Process.Pid, syscall.SIGTERM) }
	c.WaitDelay = defaultGracePeriod
	if cmd.GracePeriod > 0 {
		c.WaitDelay = cmd.GracePeriod
	}

	log := logger.WithComponent("process")
	log.Debug("starting process", logger.Fields("command", cmd.String()))

	start := time.Now()
	err := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		log.Debug("process finished", logger.MergeWithDuration(logger.Fields("binary", cmd.Binary), res.Duration))
		return res, nil
	case errors.Is(err, exec.ErrNotFound):
		return res, fmt.Errorf("%w: %s", ErrNotFound, cmd.Binary)
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: %s stopped: %w", cmd.Binary, ctx.Err())
	default:
		return res, fmt.Errorf("process: %s exit code %d: %w", cmd.Binary, res.ExitCode, err)
	}
}

// Available reports whether binary resolves to an executable.
func Available(binary string) bool {
	if binary == "" {
		return false
	}
	_, err := exec.LookPath(binary)
	return err == nil
}
