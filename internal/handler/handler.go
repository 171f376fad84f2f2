// Package handler routes platform-agnostic requests to workers through a
// middleware chain. Platform adapters under platforms/ translate native
// event shapes (HTTP bodies, Lambda events) into Request values; workers
// stay free of transport concerns.
package handler

import (
	"context"

	"qualityaudit/internal/config"
	obs "qualityaudit/internal/observability/types"
)

// Middleware wraps a HandlerFunc to add a cross-cutting concern.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc is the core request processing signature that middleware
// layers wrap.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Handler wraps a Worker with middleware.
type Handler struct {
	worker      Worker
	logger      obs.Logger
	metrics     obs.Metrics
	middlewares []Middleware
	cfg         config.HandlerConfig
}

// New creates a handler with the standard middleware stack: recovery
// outermost, then timeout, metrics and logging.
func New(worker Worker, logger obs.Logger, metrics obs.Metrics, cfg config.HandlerConfig) *Handler {
	h := &Handler{
		worker:  worker,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}

	h.Use(RecoveryMiddleware(logger, metrics))
	if cfg.Timeout > 0 {
		h.Use(TimeoutMiddleware(cfg.Timeout))
	}
	if cfg.EnableMetrics {
		h.Use(MetricsMiddleware(metrics, worker.Name()))
	}
	h.Use(LoggingMiddleware(logger, worker.Name()))

	return h
}

// Use appends middleware. The first middleware added is the outermost
// layer.
func (h *Handler) Use(middleware Middleware) {
	h.middlewares = append(h.middlewares, middleware)
}

// Handle runs a request through the middleware chain and the worker.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	chain := h.buildChain()

	ctx = context.WithValue(ctx, "request_id", req.ID)
	ctx = context.WithValue(ctx, "worker", h.worker.Name())

	return chain(ctx, req)
}

func (h *Handler) buildChain() HandlerFunc {
	chain := h.workerHandler
	for i := len(h.middlewares) - 1; i >= 0; i-- {
		chain = h.middlewares[i](chain)
	}
	return chain
}

func (h *Handler) workerHandler(ctx context.Context, req Request) (Response, error) {
	return h.worker.Process(ctx, req)
}

// Health reports the worker's health.
func (h *Handler) Health(ctx context.Context) error {
	return h.worker.Health(ctx)
}

// Config returns the handler configuration.
func (h *Handler) Config() config.HandlerConfig {
	return h.cfg
}

// Worker returns the wrapped worker.
func (h *Handler) Worker() Worker {
	return h.worker
}
