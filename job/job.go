package job

import (
	"time"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/ingest"
	"github.com/kbukum/scribekit/lifecycle"
	"github.com/kbukum/scribekit/transcription"
)

// Job is the record of one finished transcription request. Exactly one of
// Result and Err is set.
type Job struct {
	ID     string
	Source ingest.Kind
	// Resources are the temporary files the job created, all released.
	Resources []*lifecycle.Resource
	// CleanupErrors are removal failures; they never change the outcome.
	CleanupErrors []error
	Result        *transcription.Result
	Err           *errors.AppError
	Duration      time.Duration
}

// Succeeded reports whether the job produced a result.
func (j *Job) Succeeded() bool { return j.Err == nil }

// Outcome returns the result or the error.
func (j *Job) Outcome() (*transcription.Result, error) {
	if j.Err != nil {
		return nil, j.Err
	}
	return j.Result, nil
}
