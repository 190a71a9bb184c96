package process

import (
	"strings"
	"time"

	"github.com/kbukum/scribekit/util"
)

const (
	// stderrCapture is how much trailing stderr a Result keeps. Tools print
	// progress there, and the cause of a failure is usually at the end.
	stderrCapture = 64 << 10
	// maxStderrInError bounds the stderr quoted in error messages.
	maxStderrInError = 2048
)

// Result describes a finished child process.
type Result struct {
	// Stdout is empty when Command.Stdout was set.
	Stdout []byte
	// Stderr holds at most the last 64 KiB the child wrote.
	Stderr []byte
	// ExitCode is -1 when the process was killed or never started.
	ExitCode int
	Duration time.Duration
}

// StderrText returns stderr trimmed and cut short for use in an error.
// It is safe on a nil Result.
func (r *Result) StderrText() string {
	if r == nil {
		return ""
	}
	return util.Truncate(strings.TrimSpace(string(r.Stderr)), maxStderrInError)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte { return t.buf }
