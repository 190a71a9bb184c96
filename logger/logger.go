package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger writes structured records through zerolog. Every record carries
// the service name; derived loggers add fields on top.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New builds a logger from cfg and sets the process-wide zerolog level.
// An unknown level falls back to info.
func New(cfg *Config, serviceName string) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	if cfg.Format == FormatConsole || cfg.Format == FormatPretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor, TimeFormat: time.TimeOnly}
	}

	zc := zerolog.New(out).With().Str("service", serviceName)
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		// Skip emit and the level method.
		zc = zc.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2)
	}
	return &Logger{zl: zc.Logger(), service: serviceName}
}

// NewWithWriter returns a JSON logger on w with no level filter of its own.
func NewWithWriter(w io.Writer, serviceName string) *Logger {
	return &Logger{zl: zerolog.New(w).With().Str("service", serviceName).Logger(), service: serviceName}
}

// NewDefault returns a console logger at info level.
func NewDefault(serviceName string) *Logger {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return New(cfg, serviceName)
}

func (l *Logger) derive(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl, service: l.service}
}

// WithComponent tags records with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name).Logger())
}

// WithError attaches err under the "error" key.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err).Logger())
}

// WithContext adds the request and job IDs stored in ctx and, when ctx
// carries a valid span, its trace and span IDs.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		zc = zc.Str(FieldRequestID, id)
	}
	if id, ok := ctx.Value(jobIDKey).(string); ok {
		zc = zc.Str(FieldJobID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return l.derive(zc.Logger())
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) { emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]interface{})  { emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]interface{})  { emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]interface{}) { emit(l.zl.Error(), msg, fields) }

func emit(ev *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		ev = ev.Fields(f)
	}
	ev.Msg(msg)
}

type contextKey int

const (
	requestIDKey contextKey = iota
	jobIDKey
)

// ContextWithRequestID stores the HTTP request ID for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithJobID stores the job ID for WithContext.
func ContextWithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

var globalLogger *Logger

// Init replaces the global logger with one built from cfg.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	globalLogger = New(cfg, cfg.ServiceName)
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the global logger, creating a default one first
// if Init has not run.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault("scribekit")
	}
	return globalLogger
}

// Info logs on the global logger.
func Info(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Info(msg, fields...) }

// Warn logs on the global logger.
func Warn(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Warn(msg, fields...) }

// WithComponent derives a component logger from the global logger.
func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }
