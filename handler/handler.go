// Package handler exposes a clova.Extension over AWS Lambda, net/http (chi)
// and fiber.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"clova-webhook/clova"
)

const correlationHeader = "X-Correlation-Id"

// Dispatcher is satisfied by *clova.Extension.
type Dispatcher interface {
	Handle(ctx context.Context, raw []byte) (clova.Result, error)
}

type Handler struct {
	ext    Dispatcher
	logger *slog.Logger
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func NewHandler(ext Dispatcher, logger *slog.Logger) (*Handler, error) {
	if ext == nil {
		return nil, errors.New("handler: extension must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ext: ext, logger: logger}, nil
}

// Handle is the Lambda entry point for API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(func(name string) string { return headerValue(req.Headers, name) })

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			h.logger.Warn("invalid base64 body", "correlation_id", corrID, "err", err)
			return toProxy(errorResult(http.StatusBadRequest, string(clova.ErrorMalformedPayload), "invalid_base64", corrID)), nil
		}
		body = decoded
	}

	return toProxy(h.serve(ctx, body, corrID)), nil
}

// serve runs the extension and maps the outcome to an HTTP-shaped result.
func (h *Handler) serve(ctx context.Context, body []byte, corrID string) clova.Result {
	logger := h.logger.With("correlation_id", corrID)

	res, err := h.ext.Handle(ctx, body)
	if err != nil {
		status, code, reason := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", code, "reason", reason, "err", err)
		} else {
			logger.Warn("request rejected", "code", code, "reason", reason, "err", err)
		}
		return errorResult(status, code, reason, corrID)
	}

	headers := make(map[string]string, len(res.Header)+1)
	for k, v := range res.Header {
		headers[k] = v
	}
	headers[correlationHeader] = corrID
	res.Header = headers
	return res
}

func statusFor(err error) (int, string, string) {
	var ce *clova.Error
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, "INTERNAL", ""
	}
	switch ce.Code {
	case clova.ErrorMalformedPayload:
		return http.StatusBadRequest, string(ce.Code), ce.Reason
	case clova.ErrorVerification:
		return http.StatusForbidden, string(ce.Code), ce.Reason
	default:
		return http.StatusInternalServerError, string(ce.Code), ce.Reason
	}
}

func errorResult(status int, code, reason, corrID string) clova.Result {
	body, _ := json.Marshal(errorResponse{Error: code, Reason: reason})
	return clova.Result{
		StatusCode: status,
		Header: map[string]string{
			"Content-Type":    clova.ContentType,
			correlationHeader: corrID,
		},
		Body: body,
	}
}

func toProxy(res clova.Result) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: res.StatusCode,
		Headers:    res.Header,
		Body:       string(res.Body),
	}
}

// correlationID reuses the caller's header when present.
func correlationID(get func(string) string) string {
	if id := strings.TrimSpace(get(correlationHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
