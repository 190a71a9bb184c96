package middleware

import (
	"net/http"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/util"
)

// defaultMaxBodySize leaves room for a 50MB upload plus multipart framing.
const defaultMaxBodySize = 60 << 20

// BodySizeLimit caps request bodies at maxSize ("60MB", "512KB"). A request
// that declares a larger Content-Length is rejected as invalid input before
// the handler runs; other bodies fail on read once they pass the limit.
func BodySizeLimit(maxSize string) Middleware {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	tooLarge := errors.InvalidInput("body", "request body exceeds the "+util.FormatSize(limit)+" limit")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(w, tooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
