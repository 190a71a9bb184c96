package logger

import "time"

// Field keys shared by every package so records can be queried uniformly.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldOperation = "operation"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldSource    = "source"
	FieldStage     = "stage"
	FieldPath      = "path"
	FieldExitCode  = "exit_code"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("engine finished", logger.Fields(logger.FieldExitCode, 0))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}

// MergeWithDuration sets duration_ms on fields, allocating it if nil.
func MergeWithDuration(fields map[string]interface{}, d time.Duration) map[string]interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
