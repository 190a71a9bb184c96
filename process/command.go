package process

import (
	"io"
	"strings"
	"time"
)

// Command describes one child process.
type Command struct {
	// Binary is a path or a name looked up on PATH.
	Binary string
	Args   []string
	// Dir defaults to the current directory.
	Dir string
	// Env entries (KEY=value) are appended to the parent environment.
	Env   []string
	Stdin io.Reader
	// Stdout, when set, receives output as it is produced and Result.Stdout
	// stays empty. An *os.File is handed to the child directly, which is
	// how two tools are joined by a pipe.
	Stdout io.Writer
	// GracePeriod is the wait between SIGTERM and SIGKILL. Zero means 5s.
	GracePeriod time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}
