// Package observability provides the central provider for logging and
// metrics used throughout the quality audit service.
package observability

import (
	"fmt"
	"io"
	"os"
	"sync"

	"qualityaudit/internal/observability/logger"
	"qualityaudit/internal/observability/metrics"
	"qualityaudit/internal/observability/types"
)

// Type aliases so callers import a single package.
type (
	Logger   = types.Logger
	Metrics  = types.Metrics
	Fields   = types.Fields
	Config   = types.Config
	Provider = types.Provider
)

// DefaultProvider implements Provider. Logger and Metrics instances are
// created lazily, one per component name, and reused on subsequent calls.
type DefaultProvider struct {
	config  *Config
	loggers map[string]Logger
	metrics map[string]Metrics
	mu      sync.RWMutex
}

// NewProvider creates a provider with the given configuration.
// LogOutput defaults to os.Stdout.
func NewProvider(config *Config) Provider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stdout
	}

	return &DefaultProvider{
		config:  config,
		loggers: make(map[string]Logger),
		metrics: make(map[string]Metrics),
	}
}

// Logger returns the logger for a component. The logger carries the
// provider's additional fields plus a "component" field, and is named
// "{service}.{component}".
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	serviceName := fmt.Sprintf("%s.%s", p.config.ServiceName, component)

	var l Logger = logger.New(
		serviceName,
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)
	p.loggers[component] = l

	return l
}

// Metrics returns the metrics collector for a component.
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if m, exists := p.metrics[component]; exists {
		return m
	}

	var m Metrics = metrics.New(component)
	p.metrics[component] = m

	return m
}

// Close closes the log output if it is closable, leaving stdout and stderr
// alone.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
