package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNewUsesKindTable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		status    int
		retryable bool
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest, false},
		{ErrCodeDownloadFailure, http.StatusBadGateway, true},
		{ErrCodeConversionFailure, http.StatusUnprocessableEntity, false},
		{ErrCodeEngineFailure, http.StatusBadGateway, false},
		{ErrCodeIOFailure, http.StatusInternalServerError, false},
		{ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{ErrCodeRateLimited, http.StatusTooManyRequests, true},
		{ErrCodeInternal, http.StatusInternalServerError, false},
		{ErrorCode("MADE_UP"), http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			err := New(tc.code, "msg")
			if err.Retryable != tc.retryable || IsRetryableCode(tc.code) != tc.retryable {
				t.Errorf("expected retryable=%v for %s", tc.retryable, tc.code)
			}
			if err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, err.HTTPStatus)
			}
		})
	}
}

func TestConstructors_CodesAndStatus(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"invalid input", InvalidInput("url", "bad"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"download", DownloadFailure("lookup failed", cause), ErrCodeDownloadFailure, http.StatusBadGateway},
		{"conversion", ConversionFailure("ffmpeg failed", cause), ErrCodeConversionFailure, http.StatusUnprocessableEntity},
		{"engine", EngineFailure("whisper failed", cause), ErrCodeEngineFailure, http.StatusBadGateway},
		{"io", IOFailure("write recording", cause), ErrCodeIOFailure, http.StatusInternalServerError},
		{"timeout", Timeout("engine"), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"canceled", Canceled("engine"), ErrCodeCanceled, StatusClientClosedRequest},
		{"unavailable", ServiceUnavailable("transcriber"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited(), ErrCodeRateLimited, http.StatusTooManyRequests},
		{"internal", Internal(cause), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := EngineFailure("whisper exited with code 1", stderrors.New("stderr text"))
	msg := err.Error()
	if !strings.Contains(msg, "ENGINE_FAILURE") || !strings.Contains(msg, "stderr text") {
		t.Errorf("unexpected error string %q", msg)
	}

	plain := InvalidInput("", "no audio captured")
	if plain.Error() != "INVALID_INPUT: Invalid input: no audio captured" {
		t.Errorf("unexpected error string %q", plain.Error())
	}
	if _, ok := plain.Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
}

func TestAppError_UnwrapChain(t *testing.T) {
	root := stderrors.New("root")
	wrapped := fmt.Errorf("outer: %w", DownloadFailure("stream failed", root))

	if !stderrors.Is(wrapped, root) {
		t.Error("expected errors.Is to find root cause")
	}
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed")
	}
	if appErr.Code != ErrCodeDownloadFailure {
		t.Errorf("expected DOWNLOAD_FAILURE, got %s", appErr.Code)
	}
	if !IsAppError(wrapped) {
		t.Error("expected IsAppError to be true")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != "" {
		t.Error("expected empty kind for nil")
	}
	if KindOf(stderrors.New("plain")) != ErrCodeInternal {
		t.Error("expected plain errors to be INTERNAL_ERROR")
	}
	if !IsKind(Timeout("download"), ErrCodeTimeout) {
		t.Error("expected IsKind to match TIMEOUT")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background(), "engine") != nil {
		t.Error("expected nil for live context")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if err := FromContext(ctx, "engine"); err == nil || err.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %v", err)
	}

	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	err := FromContext(ctx2, "engine")
	if err == nil || err.Code != ErrCodeCanceled {
		t.Fatalf("expected CANCELED, got %v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Error("expected cause to be context.Canceled")
	}
}

func TestWithDetails(t *testing.T) {
	err := EngineFailure("x", nil).WithDetail("exit_code", 2).WithDetails(map[string]any{"stderr": "oops"})
	if err.Details["exit_code"] != 2 || err.Details["stderr"] != "oops" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestToResponse(t *testing.T) {
	resp := InvalidInput("video_url", "video too long").ToResponse()
	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "video_url" {
		t.Errorf("expected field detail, got %v", resp.Error.Details)
	}
	if resp.Error.Retryable {
		t.Error("expected non-retryable response")
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(nil) != nil {
		t.Error("expected nil for nil error")
	}

	plain := fmt.Errorf("disk on fire")
	got := Normalize(plain)
	if got.Code != ErrCodeInternal || got.Status() != http.StatusInternalServerError {
		t.Errorf("expected internal 500, got %s %d", got.Code, got.Status())
	}
	if !stderrors.Is(got, plain) {
		t.Error("expected cause to be kept")
	}

	wrapped := fmt.Errorf("fetch: %w", RateLimited())
	if got := Normalize(wrapped); got.Code != ErrCodeRateLimited || got.Status() != http.StatusTooManyRequests {
		t.Errorf("expected rate limited 429, got %s %d", got.Code, got.Status())
	}
	if got := Normalize(wrapped); !got.Retryable {
		t.Error("expected rate limited errors to be retryable")
	}

	if s := (&AppError{Code: ErrCodeInternal}).Status(); s != http.StatusInternalServerError {
		t.Errorf("expected 500 default status, got %d", s)
	}
}
