package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/scribekit/errors"
	"github.com/kbukum/scribekit/logger"
)

// Recovery logs a handler panic with its stack and answers 500 with the
// standard error body. If the handler already sent its header the response
// is left as is.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := record(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					logger.FieldPath, r.URL.Path,
					"method", r.Method,
					logger.FieldRequestID, r.Header.Get(HeaderRequestID),
					"committed", rw.Committed(),
				))
				if !rw.Committed() {
					writeError(rw, errors.Internal(fmt.Errorf("panic: %v", rec)))
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.Status())
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
