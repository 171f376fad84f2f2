// Package mocks provides mock and no-op observability implementations for
// testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"qualityaudit/internal/observability/types"
)

// MockLogger is a testify mock of the Logger interface.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	m.Called(ctx, msg, err, fields)
}

func (m *MockLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	m.Called(ctx, msg, fields)
}

func (m *MockLogger) WithFields(fields types.Fields) types.Logger {
	args := m.Called(fields)
	if logger, ok := args.Get(0).(types.Logger); ok {
		return logger
	}
	return m
}

// MockMetrics is a testify mock of the Metrics interface.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordSuccess(operationType string) {
	m.Called(operationType)
}

func (m *MockMetrics) RecordError(operationType string, errorType string) {
	m.Called(operationType, errorType)
}

func (m *MockMetrics) RecordDuration(operation string, duration float64) {
	m.Called(operation, duration)
}

func (m *MockMetrics) RecordDocumentSize(docType string, bytes int64) {
	m.Called(docType, bytes)
}

func (m *MockMetrics) StartOperation(operation string) {
	m.Called(operation)
}

func (m *MockMetrics) EndOperation(operation string) {
	m.Called(operation)
}

// NopLogger discards everything. Use it where a test does not assert on
// logging.
type NopLogger struct{}

func (NopLogger) Info(context.Context, string, types.Fields)         {}
func (NopLogger) Error(context.Context, string, error, types.Fields) {}
func (NopLogger) Warn(context.Context, string, types.Fields)         {}
func (NopLogger) Debug(context.Context, string, types.Fields)        {}
func (n NopLogger) WithFields(types.Fields) types.Logger             { return n }

// NopMetrics discards everything. It avoids registering collectors with the
// global Prometheus registry, which would collide across test packages.
type NopMetrics struct{}

func (NopMetrics) RecordSuccess(string)            {}
func (NopMetrics) RecordError(string, string)      {}
func (NopMetrics) RecordDuration(string, float64)  {}
func (NopMetrics) RecordDocumentSize(string, int64) {}
func (NopMetrics) StartOperation(string)           {}
func (NopMetrics) EndOperation(string)             {}

// NopProvider hands out no-op loggers and metrics.
type NopProvider struct{}

func (NopProvider) Logger(string) types.Logger   { return NopLogger{} }
func (NopProvider) Metrics(string) types.Metrics { return NopMetrics{} }
func (NopProvider) Close() error                 { return nil }
