package handler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	obs "qualityaudit/internal/observability/types"
)

// RecoveryMiddleware turns panics into an internal error response. Keep it
// outermost so it catches panics from the other layers too.
func RecoveryMiddleware(logger obs.Logger, metrics obs.Metrics) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (resp Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "panic recovered", fmt.Errorf("%v", r), obs.Fields{
						"request_id": req.ID,
						"stack":      string(debug.Stack()),
					})
					metrics.RecordError("panic", "panic_recovered")

					// Panic details stay out of the client response.
					resp = NewErrorResponse(req.ID, CodeInternalError, "An internal error occurred", "")
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()
			return next(ctx, req)
		}
	}
}

// LoggingMiddleware logs request start and completion with timing.
func LoggingMiddleware(logger obs.Logger, workerName string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			requestLogger := logger.WithFields(obs.Fields{
				"request_id": req.ID,
				"type":       req.Type,
				"source":     req.Source,
				"worker":     workerName,
			})

			requestLogger.Info(ctx, "processing request", obs.Fields{
				"payload_size": len(req.Payload),
			})
			start := time.Now()

			resp, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err != nil:
				requestLogger.Error(ctx, "request failed", err, obs.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			case !resp.Success:
				fields := obs.Fields{"duration_ms": duration.Milliseconds()}
				if resp.Error != nil {
					fields["error_code"] = resp.Error.Code
					fields["error_msg"] = resp.Error.Message
				}
				requestLogger.Warn(ctx, "request completed with failure", fields)
			default:
				requestLogger.Info(ctx, "request completed", obs.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			}

			resp.Duration = duration
			return resp, err
		}
	}
}

// MetricsMiddleware records per-request counters, duration and the
// in-progress gauge.
func MetricsMiddleware(metrics obs.Metrics, workerName string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			metrics.StartOperation(workerName)
			defer metrics.EndOperation(workerName)

			start := time.Now()
			resp, err := next(ctx, req)
			metrics.RecordDuration(workerName, time.Since(start).Seconds())

			switch {
			case err != nil:
				metrics.RecordError(workerName, "processing_error")
			case !resp.Success:
				errorType := "unknown_error"
				if resp.Error != nil {
					errorType = resp.Error.Code
				}
				metrics.RecordError(workerName, errorType)
			default:
				metrics.RecordSuccess(workerName)
			}

			return resp, err
		}
	}
}

// TimeoutMiddleware bounds request processing. On expiry the request gets
// a retryable timeout response; the worker goroutine is left to observe
// the cancelled context.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (Response, error) {
			timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp Response
				err  error
			}
			done := make(chan result, 1)

			go func() {
				resp, err := next(timeoutCtx, req)
				done <- result{resp, err}
			}()

			select {
			case res := <-done:
				return res.resp, res.err
			case <-timeoutCtx.Done():
				return NewErrorResponse(
					req.ID,
					CodeTimeout,
					"Request processing timed out",
					fmt.Sprintf("exceeded timeout of %v", timeout),
				), timeoutCtx.Err()
			}
		}
	}
}
