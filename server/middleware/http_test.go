package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/server/middleware"
)

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rr.Body.String())
	}
	return body
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test")
	handler := middleware.Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test")
	handler := middleware.Recovery(log)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	body := decodeError(t, rr)
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
	if strings.Contains(body.Error.Message, "test panic") {
		t.Fatalf("panic value leaked to client: %s", body.Error.Message)
	}
	if !strings.Contains(buf.String(), "test panic") {
		t.Errorf("expected panic to be logged, got %s", buf.String())
	}
}

func TestRecovery_PanicAfterHeaderKeepsResponse(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test")
	handler := middleware.Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late panic")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected original 202, got %d", rr.Code)
	}
	if rr.Body.String() != "partial" {
		t.Errorf("expected body untouched, got %q", rr.Body.String())
	}
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	log := logger.NewWithWriter(io.Discard, "test")
	handler := middleware.Recovery(log)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	var seenHeader, seenContext string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeader = r.Header.Get(middleware.HeaderRequestID)
		seenContext = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	got := rr.Header().Get(middleware.HeaderRequestID)
	if got == "" {
		t.Fatal("expected a generated request ID on the response")
	}
	if seenHeader != got || seenContext != got {
		t.Fatalf("handler saw header=%q ctx=%q, response has %q", seenHeader, seenContext, got)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(ok))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(middleware.HeaderRequestID); got != "req-123" {
		t.Fatalf("expected req-123, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", "POST", "https://app.example.com", http.StatusOK, "https://app.example.com"},
		{"preflight", "OPTIONS", "https://app.example.com", http.StatusNoContent, "https://app.example.com"},
		{"disallowed origin", "GET", "https://evil.example.com", http.StatusOK, ""},
		{"no origin", "GET", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(cfg)(http.HandlerFunc(ok))
			req := httptest.NewRequest(tt.method, "/api/transcribe/file", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Fatalf("allow-origin = %q, want %q", got, tt.wantAllowed)
			}
			if tt.wantAllowed != "" {
				if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
					t.Errorf("allow-credentials = %q", got)
				}
				if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
					t.Errorf("allow-methods = %q", got)
				}
			}
		})
	}
}

func TestCORS_WildcardAndMaxAge(t *testing.T) {
	handler := middleware.CORS(&middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		MaxAge:         600,
	})(http.HandlerFunc(ok))

	req := httptest.NewRequest("OPTIONS", "/api/youtube/transcribe", http.NoBody)
	req.Header.Set("Origin", "https://any.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://any.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("max-age = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != middleware.HeaderRequestID {
		t.Errorf("expose-headers = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("allow-credentials = %q, want unset", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Errorf("vary = %q", got)
	}
}

func TestCORS_NoOriginsConfiguredIsPassThrough(t *testing.T) {
	called := false
	handler := middleware.CORS(&middleware.CORSConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !called {
		t.Fatal("expected handler to run when CORS is not configured")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected no CORS headers")
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test")
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{}}`))
	}))

	req := httptest.NewRequest("POST", "/api/transcribe/file", http.NoBody)
	req.Header.Set(middleware.HeaderRequestID, "req-9")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry[logger.FieldStatus] != float64(http.StatusBadRequest) {
		t.Errorf("status = %v", entry[logger.FieldStatus])
	}
	if entry["path"] != "/api/transcribe/file" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["bytes"] != float64(len(`{"error":{}}`)) {
		t.Errorf("bytes = %v", entry["bytes"])
	}
	if entry[logger.FieldRequestID] != "req-9" {
		t.Errorf("request_id = %v", entry[logger.FieldRequestID])
	}
}

func TestRequestLogger_SkipsHealthEndpoints(t *testing.T) {
	for _, path := range []string{"/health", "/alive", "/ready", "/metrics", "/version"} {
		t.Run(path, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "test")
			called := false
			handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, http.NoBody))

			if !called {
				t.Error("handler should still be called for health endpoints")
			}
			if buf.Len() != 0 {
				t.Errorf("expected no log output, got %s", buf.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	tests := []struct {
		name          string
		size          int
		unknownLength bool
		wantStatus    int
		wantReadErr   bool
	}{
		{name: "under limit", size: 512, wantStatus: http.StatusOK},
		{name: "at limit", size: 1024, wantStatus: http.StatusOK},
		{name: "declared over limit", size: 2048, wantStatus: http.StatusBadRequest},
		{name: "streamed over limit", size: 2048, unknownLength: true, wantStatus: http.StatusOK, wantReadErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var readErr error
			handler := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, readErr = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", "/api/transcribe/live", bytes.NewReader(make([]byte, tt.size)))
			if tt.unknownLength {
				req.ContentLength = -1
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusBadRequest {
				if called {
					t.Error("handler should not run for a declared oversized body")
				}
				if body := decodeError(t, rr); body.Error.Code != "INVALID_INPUT" {
					t.Errorf("expected INVALID_INPUT, got %q", body.Error.Code)
				}
				return
			}
			var maxErr *http.MaxBytesError
			if got := errors.As(readErr, &maxErr); got != tt.wantReadErr {
				t.Fatalf("read error = %v, want MaxBytesError %v", readErr, tt.wantReadErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	handler := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             2,
		PathPrefix:        "/api/",
	})(http.HandlerFunc(ok))

	send := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", path, http.NoBody)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := send("/api/youtube/transcribe", "10.0.0.1:5000"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}

	rr := send("/api/youtube/transcribe", "10.0.0.1:5001")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	body := decodeError(t, rr)
	if body.Error.Code != "RATE_LIMITED" || !body.Error.Retryable {
		t.Fatalf("unexpected body: %+v", body)
	}

	if rr := send("/api/youtube/transcribe", "10.0.0.2:5000"); rr.Code != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", rr.Code)
	}
	if rr := send("/health", "10.0.0.1:5000"); rr.Code != http.StatusOK {
		t.Fatalf("path outside prefix: expected 200, got %d", rr.Code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	handler := middleware.RateLimit(middleware.RateLimitConfig{})(http.HandlerFunc(ok))
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/x", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
}

func TestRemoteIP(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"192.168.1.5:1234", "192.168.1.5"},
		{"[::1]:8080", "::1"},
		{"unix-socket", "unix-socket"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.RemoteAddr = tt.addr
			if got := middleware.RemoteIP(req); got != tt.want {
				t.Fatalf("RemoteIP = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}
	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	chain := middleware.Chain(m1, m2)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("position %d: expected %s, got %s (full: %v)", i, v, order[i], order)
		}
	}
}

// ---------------------------------------------------------------------------
// statusWriter
// ---------------------------------------------------------------------------

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusWriter_Flush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}

	log := logger.NewWithWriter(io.Discard, "test")
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(fr, httptest.NewRequest("GET", "/stream", http.NoBody))

	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}
