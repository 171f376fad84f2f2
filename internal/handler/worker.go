package handler

import "context"

// Worker is the platform-agnostic unit of business logic. The submission
// and reporting workers implement it; platform adapters never see past it.
type Worker interface {
	// Name identifies the worker in logs and metrics.
	Name() string

	// Process handles one request. Business failures are reported inside
	// the Response; a returned error means the worker itself broke.
	Process(ctx context.Context, request Request) (Response, error)

	// Health verifies the worker's dependencies are reachable.
	Health(ctx context.Context) error
}
