package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the body of every failed API call:
//
//	{"error": {"code": "DOWNLOAD_FAILURE", "message": "...", "retryable": true}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. Cause never leaves
// the process.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse builds the response body for e.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// Status is the HTTP status for e, 500 when none was set.
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// Normalize returns the AppError in err's chain, or wraps err as Internal
// so the caller always has a code and status to report.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// IsAppError reports whether err's chain holds an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
