// Package platforms adapts the platform-agnostic handler to concrete
// runtimes: a standard HTTP server and AWS Lambda.
package platforms

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"qualityaudit/internal/handler"
)

// HTTPAdapter serves the handler over plain HTTP. Suitable for local
// development and Kubernetes deployments.
type HTTPAdapter struct {
	handler *handler.Handler
}

// NewHTTPAdapter creates an HTTP adapter around the handler.
func NewHTTPAdapter(h *handler.Handler) *HTTPAdapter {
	return &HTTPAdapter{handler: h}
}

// ServeHTTP implements http.Handler.
func (a *HTTPAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if isHealthPath(r.URL.Path) {
		a.handleHealth(w, r)
		return
	}

	body, err := a.readBody(r)
	if err != nil {
		a.writeResponse(w, handler.NewErrorResponse(
			uuid.New().String(),
			handler.CodeInvalidRequest,
			"Failed to read request body",
			err.Error(),
		))
		return
	}

	req := a.buildRequest(r, body)
	resp, err := a.handler.Handle(r.Context(), req)
	if err != nil && resp.Error == nil {
		resp = handler.NewErrorResponse(req.ID, handler.CodeInternalError, "Request processing failed", err.Error())
	}
	a.writeResponse(w, resp)
}

// Serve starts a plain HTTP server with the adapter as root handler.
func (a *HTTPAdapter) Serve(addr string) error {
	return http.ListenAndServe(addr, a)
}

func isHealthPath(path string) bool {
	switch path {
	case "/health", "/healthz", "/ready", "/readyz":
		return true
	}
	return false
}

func (a *HTTPAdapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := a.handler.Health(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"worker": a.handler.Worker().Name(),
		"time":   time.Now().UTC(),
	})
}

func (a *HTTPAdapter) readBody(r *http.Request) ([]byte, error) {
	maxSize := a.handler.Config().MaxRequestSize
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func (a *HTTPAdapter) buildRequest(r *http.Request, body []byte) handler.Request {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}

	metadata := map[string]string{
		"http_method": r.Method,
		"http_path":   r.URL.Path,
	}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			metadata["query_"+key] = values[0]
		}
	}

	return handler.Request{
		ID:        requestID,
		Source:    "http",
		Type:      requestType(r),
		Payload:   json.RawMessage(body),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// requestType takes the first path segment, or an explicit header when a
// proxy rewrites paths.
func requestType(r *http.Request) string {
	if t := r.Header.Get("X-Request-Type"); t != "" {
		return t
	}
	path := strings.TrimPrefix(r.URL.Path, "/")
	if idx := strings.Index(path, "/"); idx > 0 {
		return path[:idx]
	}
	if path != "" {
		return path
	}
	return strings.ToLower(r.Method)
}

func (a *HTTPAdapter) writeResponse(w http.ResponseWriter, resp handler.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", resp.ID)
	w.WriteHeader(statusCode(resp))
	json.NewEncoder(w).Encode(resp)
}

func statusCode(resp handler.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	if resp.Error == nil {
		return http.StatusInternalServerError
	}
	switch resp.Error.Code {
	case handler.CodeValidationError, handler.CodeInvalidRequest, handler.CodeUnknownReason:
		return http.StatusBadRequest
	case handler.CodeDuplicateEntity:
		return http.StatusConflict
	case handler.CodeAssociateNotFound:
		return http.StatusNotFound
	case handler.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case handler.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
