package main

import (
	"context"
	"fmt"

	"qualityaudit/internal/handler"
)

// routerWorker dispatches requests to the session, submission or reporting
// worker by request type. It lets one deployment (one Lambda, one HTTP
// server) serve all operations.
type routerWorker struct {
	workers map[string]handler.Worker
}

func newRouterWorker(workers ...handler.Worker) *routerWorker {
	byName := make(map[string]handler.Worker, len(workers))
	for _, w := range workers {
		byName[w.Name()] = w
	}
	return &routerWorker{workers: byName}
}

func (r *routerWorker) Name() string {
	return "auditd"
}

func (r *routerWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	worker, ok := r.workers[req.Type]
	if !ok {
		return handler.NewErrorResponse(
			req.ID,
			handler.CodeInvalidRequest,
			"Unknown operation",
			fmt.Sprintf("no worker handles %q", req.Type),
		), nil
	}
	return worker.Process(ctx, req)
}

func (r *routerWorker) Health(ctx context.Context) error {
	for name, worker := range r.workers {
		if err := worker.Health(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
