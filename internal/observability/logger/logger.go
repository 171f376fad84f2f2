// Package logger implements the Logger contract with JSON output suitable
// for Loki and similar aggregation systems.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"qualityaudit/internal/observability/types"
)

// LogLevel represents the severity of a log message.
type LogLevel int

// Log levels ordered from least to most severe.
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a string level to a LogLevel.
// Unrecognized values default to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// String returns the level name used in the serialized log entry.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// JSONLogger implements types.Logger with one JSON object per entry.
// Every entry carries timestamp, level, service, environment, hostname and
// message, plus persistent and call-level fields. Request and session IDs
// present on the context are extracted automatically.
type JSONLogger struct {
	mu               sync.RWMutex
	output           io.Writer
	serviceName      string
	environment      string
	hostname         string
	minLevel         LogLevel
	persistentFields types.Fields
}

// New creates a JSONLogger. A nil output defaults to os.Stdout.
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *JSONLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stdout
	}

	return &JSONLogger{
		output:           output,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         ParseLevel(logLevel),
		persistentFields: additionalFields,
	}
}

// Info implements types.Logger.
func (l *JSONLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > InfoLevel {
		return
	}
	l.log(ctx, InfoLevel, msg, nil, fields)
}

// Error implements types.Logger.
func (l *JSONLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	if l.minLevel > ErrorLevel {
		return
	}
	l.log(ctx, ErrorLevel, msg, err, fields)
}

// Warn implements types.Logger.
func (l *JSONLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > WarnLevel {
		return
	}
	l.log(ctx, WarnLevel, msg, nil, fields)
}

// Debug implements types.Logger.
func (l *JSONLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > DebugLevel {
		return
	}
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a new logger whose entries always include the given
// fields in addition to the parent's persistent fields.
func (l *JSONLogger) WithFields(fields types.Fields) types.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newFields := make(types.Fields)
	for k, v := range l.persistentFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &JSONLogger{
		output:           l.output,
		serviceName:      l.serviceName,
		environment:      l.environment,
		hostname:         l.hostname,
		minLevel:         l.minLevel,
		persistentFields: newFields,
	}
}

func (l *JSONLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := make(types.Fields)

	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["service"] = l.serviceName
	entry["env"] = l.environment
	entry["hostname"] = l.hostname
	entry["message"] = msg

	if requestID, ok := ctx.Value("request_id").(string); ok {
		entry["request_id"] = requestID
	}
	if sessionID, ok := ctx.Value("session_id").(string); ok {
		entry["session_id"] = sessionID
	}
	if recordName, ok := ctx.Value("record_name").(string); ok {
		entry["record_name"] = recordName
	}

	if err != nil {
		entry["error"] = err.Error()
		entry["error_type"] = fmt.Sprintf("%T", err)
	}

	for k, v := range l.persistentFields {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}

	if jsonBytes, err := json.Marshal(entry); err == nil {
		l.output.Write(jsonBytes)
		l.output.Write([]byte("\n"))
	}
}
