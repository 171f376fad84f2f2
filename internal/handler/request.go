package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Error codes returned by the workers. HTTP status mapping and
// retryability both key off these.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeDuplicateEntity    = "DUPLICATE_ENTITY"
	CodeUnknownReason      = "UNKNOWN_REASON"
	CodeAssociateNotFound  = "ASSOCIATE_NOT_FOUND"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Request is a platform-agnostic incoming request. Platform adapters
// (HTTP, Lambda) build it from their native event shapes.
type Request struct {
	// ID is a unique identifier for tracing.
	ID string `json:"id"`

	// Source identifies the originating platform ("http", "lambda").
	Source string `json:"source"`

	// Type selects the operation ("submit", "report").
	Type string `json:"type"`

	// Payload is the operation input as raw JSON.
	Payload json.RawMessage `json:"payload"`

	// Metadata carries transport context such as headers.
	Metadata map[string]string `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Response is a platform-agnostic worker result.
type Response struct {
	// ID correlates with the request ID.
	ID string `json:"id"`

	Success bool `json:"success"`

	// Data holds the result payload when Success is true.
	Data json.RawMessage `json:"data,omitempty"`

	// Error holds failure details when Success is false.
	Error *ErrorResponse `json:"error,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// ErrorResponse is structured failure information.
type ErrorResponse struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	Message string `json:"message"`
	Details string `json:"details,omitempty"`

	// Retryable tells the caller whether retrying the same request can
	// succeed. True only for connectivity-class failures; a duplicate
	// stays a duplicate.
	Retryable bool `json:"retryable,omitempty"`
}

// NewRequest creates a request with a generated ID and timestamp.
func NewRequest(requestType string, payload interface{}) (Request, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Request{}, err
	}
	return Request{
		ID:        uuid.New().String(),
		Type:      requestType,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		Timestamp: time.Now().UTC(),
	}, nil
}

// Unmarshal decodes the payload into v.
func (r *Request) Unmarshal(v interface{}) error {
	return json.Unmarshal(r.Payload, v)
}

// Marshal encodes v as the response data.
func (r *Response) Marshal(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Data = data
	return nil
}

// NewSuccessResponse creates a success response carrying data.
func NewSuccessResponse(id string, data interface{}) (Response, error) {
	resp := Response{
		ID:          id,
		Success:     true,
		ProcessedAt: time.Now().UTC(),
	}
	if data != nil {
		if err := resp.Marshal(data); err != nil {
			return Response{}, err
		}
	}
	return resp, nil
}

// NewErrorResponse creates a failure response for the given code.
func NewErrorResponse(id, code, message, details string) Response {
	return Response{
		ID:      id,
		Success: false,
		Error: &ErrorResponse{
			Code:      code,
			Message:   message,
			Details:   details,
			Retryable: isRetryableCode(code),
		},
		ProcessedAt: time.Now().UTC(),
	}
}

func isRetryableCode(code string) bool {
	switch code {
	case CodeStorageUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}
