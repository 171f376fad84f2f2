package platforms

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"qualityaudit/internal/handler"
)

// LambdaAdapter runs the handler inside AWS Lambda behind an API Gateway
// proxy integration.
type LambdaAdapter struct {
	handler *handler.Handler
}

// NewLambdaAdapter creates a Lambda adapter around the handler.
func NewLambdaAdapter(h *handler.Handler) *LambdaAdapter {
	return &LambdaAdapter{handler: h}
}

// Start hands control to the Lambda runtime. Never returns.
func (a *LambdaAdapter) Start() {
	lambda.Start(a.HandleEvent)
}

// HandleEvent processes one API Gateway proxy event.
func (a *LambdaAdapter) HandleEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req := a.buildRequest(event)

	resp, err := a.handler.Handle(ctx, req)
	if err != nil && resp.Error == nil {
		resp = handler.NewErrorResponse(req.ID, handler.CodeInternalError, "Request processing failed", err.Error())
	}

	body, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		return events.APIGatewayProxyResponse{StatusCode: 500}, fmt.Errorf("marshaling response: %w", marshalErr)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode(resp),
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-Request-ID": resp.ID,
		},
		Body: string(body),
	}, nil
}

func (a *LambdaAdapter) buildRequest(event events.APIGatewayProxyRequest) handler.Request {
	requestID := event.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	metadata := map[string]string{
		"http_method": event.HTTPMethod,
		"http_path":   event.Path,
	}
	for key, value := range event.QueryStringParameters {
		metadata["query_"+key] = value
	}

	requestType := event.Headers["X-Request-Type"]
	if requestType == "" {
		requestType = pathType(event.Path)
	}

	// API Gateway delivers the body base64-encoded when the integration
	// marks it binary. A body that fails to decode is passed through as-is
	// and rejected downstream as unparseable.
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		if decoded, err := base64.StdEncoding.DecodeString(event.Body); err == nil {
			body = decoded
		}
	}

	return handler.Request{
		ID:        requestID,
		Source:    "lambda",
		Type:      requestType,
		Payload:   json.RawMessage(body),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

func pathType(path string) string {
	for path != "" && path[0] == '/' {
		path = path[1:]
	}
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}
