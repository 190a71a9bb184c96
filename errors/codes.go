package errors

import "net/http"

// ErrorCode is the machine-readable kind of a failure.
type ErrorCode string

// Pipeline failure kinds.
const (
	// ErrCodeInvalidInput: the request is unusable (type, size, URL, duration).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeDownloadFailure: remote metadata lookup or media streaming failed.
	ErrCodeDownloadFailure ErrorCode = "DOWNLOAD_FAILURE"
	// ErrCodeConversionFailure: transcoding failed.
	ErrCodeConversionFailure ErrorCode = "CONVERSION_FAILURE"
	// ErrCodeEngineFailure: the speech engine failed or produced unusable output.
	ErrCodeEngineFailure ErrorCode = "ENGINE_FAILURE"
	// ErrCodeIOFailure: local filesystem error.
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"
	// ErrCodeTimeout: a bounded step ran past its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Service kinds.
const (
	ErrCodeCanceled           ErrorCode = "CANCELED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status for a caller that
// went away before the job finished.
const StatusClientClosedRequest = 499

type kind struct {
	status    int
	retryable bool
}

// kinds holds the HTTP status and retry advice for each code. The pipeline
// never retries on its own; Retryable is advice for callers.
var kinds = map[ErrorCode]kind{
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeDownloadFailure:    {http.StatusBadGateway, true},
	ErrCodeConversionFailure:  {http.StatusUnprocessableEntity, false},
	ErrCodeEngineFailure:      {http.StatusBadGateway, false},
	ErrCodeIOFailure:          {http.StatusInternalServerError, false},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, true},
	ErrCodeCanceled:           {StatusClientClosedRequest, false},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeRateLimited:        {http.StatusTooManyRequests, true},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
}

// IsRetryableCode reports whether a caller may retry a failure of kind code.
func IsRetryableCode(code ErrorCode) bool { return kinds[code].retryable }
