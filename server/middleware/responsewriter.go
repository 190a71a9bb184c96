package middleware

import "net/http"

// recorder notes the status and body size a handler produced.
type recorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func record(w http.ResponseWriter) *recorder { return &recorder{ResponseWriter: w} }

// Status is the status sent, 200 if the handler wrote a body without one.
func (r *recorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Committed reports whether the response header has gone out.
func (r *recorder) Committed() bool { return r.status != 0 }

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += int64(n)
	return n, err
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		if r.status == 0 {
			r.status = http.StatusOK
		}
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
