package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qualityaudit/internal/config"
	"qualityaudit/internal/handler"
	obsmocks "qualityaudit/internal/observability/mocks"
)

type stubWorker struct {
	name    string
	process func(ctx context.Context, req handler.Request) (handler.Response, error)
	healthy error
}

func (w *stubWorker) Name() string { return w.name }

func (w *stubWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	if w.process != nil {
		return w.process(ctx, req)
	}
	return handler.NewSuccessResponse(req.ID, map[string]string{"echo": string(req.Payload)})
}

func (w *stubWorker) Health(ctx context.Context) error { return w.healthy }

func newAdapter(w handler.Worker) *HTTPAdapter {
	h := handler.New(w, obsmocks.NopLogger{}, obsmocks.NopMetrics{}, config.HandlerConfig{})
	return NewHTTPAdapter(h)
}

func TestServeHTTP_Success(t *testing.T) {
	var gotType string
	w := &stubWorker{
		name: "submit",
		process: func(ctx context.Context, req handler.Request) (handler.Response, error) {
			gotType = req.Type
			return handler.NewSuccessResponse(req.ID, map[string]string{"stored": "audit_x.json"})
		},
	}
	adapter := newAdapter(w)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"entity_id":"TKT-1"}`))
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submit", gotType)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp handler.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestServeHTTP_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{handler.CodeValidationError, http.StatusBadRequest},
		{handler.CodeDuplicateEntity, http.StatusConflict},
		{handler.CodeAssociateNotFound, http.StatusNotFound},
		{handler.CodeStorageUnavailable, http.StatusServiceUnavailable},
		{handler.CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := &stubWorker{
				name: "submit",
				process: func(ctx context.Context, req handler.Request) (handler.Response, error) {
					return handler.NewErrorResponse(req.ID, tt.code, "failed", ""), nil
				},
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{}`))
			newAdapter(w).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestServeHTTP_RequestIDHeaderPropagates(t *testing.T) {
	adapter := newAdapter(&stubWorker{name: "submit"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "trace-123")
	adapter.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
}

func TestServeHTTP_Health(t *testing.T) {
	adapter := newAdapter(&stubWorker{name: "submit"})

	rec := httptest.NewRecorder()
	adapter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	sick := newAdapter(&stubWorker{name: "submit", healthy: errors.New("store down")})
	rec = httptest.NewRecorder()
	sick.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/report/summary", nil)
	assert.Equal(t, "report", requestType(r))

	r = httptest.NewRequest(http.MethodPost, "/submit", nil)
	assert.Equal(t, "submit", requestType(r))

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("X-Request-Type", "report")
	assert.Equal(t, "report", requestType(r))
}
