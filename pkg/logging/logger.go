package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields represents structured log fields
type Fields map[string]interface{}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	usernameKey  contextKey = "username"
)

// WithRequestID attaches a request identifier to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUsername attaches the acting username to the context
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext returns the acting username, or "system" if none is set
func UsernameFromContext(ctx context.Context) string {
	if ctx != nil {
		if username, ok := ctx.Value(usernameKey).(string); ok && username != "" {
			return username
		}
	}
	return "system"
}

// StructuredLogger provides structured JSON logging with context propagation.
// The logging core is zap; callers pass loosely typed Fields.
type StructuredLogger struct {
	z *zap.Logger
}

// NewStructuredLogger creates a new structured logger writing JSON to stdout
func NewStructuredLogger(service, version, level string) *StructuredLogger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zapLevel,
	)

	hostname, _ := os.Hostname()

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(
		zap.String("service", service),
		zap.String("version", version),
		zap.String("hostname", hostname),
	)

	return &StructuredLogger{z: z}
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *StructuredLogger {
	return &StructuredLogger{z: zap.NewNop()}
}

// Debug logs a debug message with structured fields
func (l *StructuredLogger) Debug(ctx context.Context, message string, fields Fields) {
	l.z.Debug(message, l.zapFields(ctx, fields, nil)...)
}

// Info logs an info message with structured fields
func (l *StructuredLogger) Info(ctx context.Context, message string, fields Fields) {
	l.z.Info(message, l.zapFields(ctx, fields, nil)...)
}

// Warn logs a warning message with structured fields
func (l *StructuredLogger) Warn(ctx context.Context, message string, fields Fields) {
	l.z.Warn(message, l.zapFields(ctx, fields, nil)...)
}

// Error logs an error message with structured fields and error details
func (l *StructuredLogger) Error(ctx context.Context, message string, fields Fields, err error) {
	l.z.Error(message, l.zapFields(ctx, fields, err)...)
}

// Fatal logs a fatal message and exits the program
func (l *StructuredLogger) Fatal(ctx context.Context, message string, fields Fields, err error) {
	l.z.Fatal(message, l.zapFields(ctx, fields, err)...)
}

// Sync flushes buffered log entries
func (l *StructuredLogger) Sync() error {
	return l.z.Sync()
}

func (l *StructuredLogger) zapFields(ctx context.Context, fields Fields, err error) []zap.Field {
	zf := make([]zap.Field, 0, len(fields)+3)

	if ctx != nil {
		if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
			zf = append(zf, zap.String("request_id", requestID))
		}
		if username, ok := ctx.Value(usernameKey).(string); ok && username != "" {
			zf = append(zf, zap.String("username", username))
		}
	}

	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}

	if err != nil {
		zf = append(zf, zap.Error(err))
	}

	return zf
}
