package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// AppError is a classified failure. Code, Message, Retryable and Details
// reach the client; Cause stays in logs.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail key.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error's details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// New returns an error of kind code, with status and retry advice taken
// from the kind. Unknown codes map to 500 and are not retryable.
func New(code ErrorCode, message string) *AppError {
	k, ok := kinds[code]
	if !ok {
		k = kinds[ErrCodeInternal]
	}
	return &AppError{Code: code, Message: message, HTTPStatus: k.status, Retryable: k.retryable}
}

// InvalidInput rejects a request. field may be empty.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, "Invalid input: "+reason)
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation is an InvalidInput whose message is already composed.
func Validation(message string) *AppError { return New(ErrCodeInvalidInput, message) }

// DownloadFailure reports a failed remote lookup or stream.
func DownloadFailure(reason string, cause error) *AppError {
	return New(ErrCodeDownloadFailure, reason).WithCause(cause)
}

// ConversionFailure reports a failed transcode.
func ConversionFailure(reason string, cause error) *AppError {
	return New(ErrCodeConversionFailure, reason).WithCause(cause)
}

// EngineFailure reports a failed speech engine run.
func EngineFailure(reason string, cause error) *AppError {
	return New(ErrCodeEngineFailure, reason).WithCause(cause)
}

// IOFailure reports a local filesystem error during operation.
func IOFailure(operation string, cause error) *AppError {
	return New(ErrCodeIOFailure, fmt.Sprintf("Local I/O failed during %s.", operation)).
		WithDetail("operation", operation).
		WithCause(cause)
}

// Timeout reports a step that ran past its deadline.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("The %s step took too long.", operation)).
		WithDetail("operation", operation)
}

// Canceled reports a job abandoned by its caller.
func Canceled(operation string) *AppError {
	return New(ErrCodeCanceled, fmt.Sprintf("The %s step was canceled.", operation)).
		WithDetail("operation", operation)
}

// ServiceUnavailable reports that service cannot take work right now.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service)).
		WithDetail("service", service)
}

// RateLimited rejects a client over its request allowance.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please slow down.")
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").WithCause(cause)
}

// FromContext maps a finished ctx to Timeout or Canceled, and a live one
// to nil.
func FromContext(ctx context.Context, operation string) *AppError {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return Timeout(operation).WithCause(err)
	default:
		return Canceled(operation).WithCause(err)
	}
}

// KindOf returns err's code. Errors outside the taxonomy are INTERNAL_ERROR;
// nil has no kind.
func KindOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsKind reports whether err is classified as code.
func IsKind(err error, code ErrorCode) bool { return KindOf(err) == code }
