package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/scribekit/logger"
)

// slowRequest marks requests worth a look. Transcriptions routinely take
// longer, so only non-API paths are flagged.
const slowRequest = 2 * time.Second

var quietPaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/metrics": true,
	"/version": true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status, size and duration. Probe paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := logger.MergeWithDuration(logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.Status(),
				"bytes", rec.size,
				"client", RemoteIP(r),
			), duration)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > slowRequest && !isAPIPath(r.URL.Path) {
				fields["slow"] = true
			}

			logByStatus(log, fields, rec.Status())
		})
	}
}

func isAPIPath(path string) bool {
	return len(path) >= 5 && path[:5] == "/api/"
}

// logByStatus logs at error for 5xx, warn for 4xx and info otherwise.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Info("Request completed", fields)
	}
}
