package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambda serves the API routes for an API Gateway proxy integration.
// Static files are not served here.
func (h *Handler) HandleLambda(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDOr(headerValue(req.Headers, correlationHeader))
	path := strings.TrimRight(req.Path, "/")
	method := strings.ToUpper(req.HTTPMethod)

	if method == http.MethodOptions {
		return lambdaResponse(http.StatusNoContent, correlationID, nil), nil
	}

	var (
		status  int
		payload any
	)
	switch path {
	case "/api/chat":
		if method != http.MethodPost {
			status, payload = http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllow}
			break
		}
		body, ok := lambdaBody(req)
		if !ok {
			status, payload = http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
			break
		}
		status, payload = h.chat(ctx, correlationID, body)
	case "/api/health":
		if method != http.MethodGet {
			status, payload = http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllow}
			break
		}
		status, payload = h.health()
	default:
		status, payload = http.StatusNotFound, errorResponse{Error: msgNotFound}
	}

	h.logger.Info("request",
		"method", method,
		"path", req.Path,
		"status", status,
		"correlation_id", correlationID,
		"aws_request_id", req.RequestContext.RequestID,
	)
	return lambdaResponse(status, correlationID, payload), nil
}

func lambdaBody(req events.APIGatewayProxyRequest) ([]byte, bool) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), true
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, false
	}
	return b, true
}

func lambdaResponse(status int, correlationID string, payload any) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                  "application/json",
			"Access-Control-Allow-Origin":   "*",
			"Access-Control-Allow-Headers":  "*",
			"Access-Control-Allow-Methods":  "GET,POST,OPTIONS",
			"Access-Control-Expose-Headers": correlationHeader,
			correlationHeader:               correlationID,
		},
	}
	if payload != nil {
		resp.Body = string(marshalBody(payload))
	}
	return resp
}

// headerValue looks up key case-insensitively; API Gateway does not
// normalise header names.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
