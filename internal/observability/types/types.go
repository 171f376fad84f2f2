// Package types defines the logging and metrics contracts shared by every
// component of the quality audit service.
//
// Core packages depend on these interfaces only; concrete implementations
// (JSON logger, Prometheus metrics) live in sibling packages and are wired
// through the observability provider.
package types

import (
	"context"
	"io"
)

// Fields represents structured logging fields as key-value pairs.
// Values must be JSON-serializable.
type Fields map[string]interface{}

// Logger is the contract for structured, context-aware logging.
// Implementations emit one JSON object per entry so output can be shipped
// straight into a log aggregation system.
type Logger interface {
	// Info logs general operational information.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs a failure together with the causing error.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a potentially harmful situation that did not stop the
	// operation, e.g. a stored record that could not be decoded.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs detail useful during development; typically filtered
	// out in production.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a Logger that includes the given fields in every
	// subsequent entry. Useful for request- or session-scoped context.
	WithFields(fields Fields) Logger
}

// Metrics is the contract for Prometheus-compatible metrics collection.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type.
	RecordSuccess(operationType string)

	// RecordError increments the error counter for an operation and
	// error category (e.g. "validation", "duplicate", "connectivity").
	RecordError(operationType string, errorType string)

	// RecordDuration records an operation duration in seconds.
	RecordDuration(operation string, duration float64)

	// RecordDocumentSize records the size in bytes of an audit document
	// read from or written to the record store.
	RecordDocumentSize(docType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Pair with EndOperation, usually via defer.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	EndOperation(operation string)
}

// Config holds provider-level observability settings.
type Config struct {
	// ServiceName identifies the service in logs and metric names.
	ServiceName string

	// Environment is the deployment environment ("development",
	// "staging", "production").
	Environment string

	// LogLevel is the minimum level to emit: debug, info, warn, error.
	LogLevel string

	// LogOutput is where log entries are written. Defaults to os.Stdout.
	LogOutput io.Writer

	// AdditionalFields are included in every log entry from every
	// component logger.
	AdditionalFields Fields
}

// Provider hands out per-component Logger and Metrics instances.
type Provider interface {
	// Logger returns the Logger for a component, creating it on first use.
	Logger(component string) Logger

	// Metrics returns the Metrics collector for a component, creating it
	// on first use.
	Metrics(component string) Metrics

	// Close releases provider resources such as log file handles.
	Close() error
}
