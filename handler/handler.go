package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"groq-relay/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 1 << 20

	msgMessageRequired = "Message is required"
	msgInvalidBody     = "Invalid request body"
	msgBodyTooLarge    = "Request body too large"
	msgRelayFailed     = "Failed to get AI response"
	msgNotFound        = "Not found"
	msgMethodNotAllow  = "Method not allowed"
)

type RelayUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Health() usecase.HealthOutput
}

// chatRequest keeps message raw so any JSON type can be checked for
// truthiness before it is forwarded.
type chatRequest struct {
	Message json.RawMessage `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves the relay API over net/http (Router) and API Gateway
// (HandleLambda). Both transports share the same request mapping.
type Handler struct {
	uc        RelayUseCase
	logger    *slog.Logger
	staticDir string
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStaticDir serves files from dir on the HTTP router. An empty dir
// disables static serving.
func WithStaticDir(dir string) Option {
	return func(h *Handler) {
		h.staticDir = strings.TrimSpace(dir)
	}
}

func NewHandler(uc RelayUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// chat maps a raw request body to a status code and JSON payload.
func (h *Handler) chat(ctx context.Context, correlationID string, body []byte) (int, any) {
	var req chatRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.logger.Warn("invalid chat request body", "correlation_id", correlationID, "err", err)
			return http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
		}
	}

	message, err := messageText(req.Message)
	if err != nil {
		h.logger.Warn("invalid chat message", "correlation_id", correlationID, "err", err)
		return http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: message})
	if err != nil {
		return h.chatError(correlationID, err)
	}
	return http.StatusOK, chatResponse{Response: out.Response, Model: out.Model}
}

func (h *Handler) chatError(correlationID string, err error) (int, any) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		h.logger.Error("chat relay failed", "correlation_id", correlationID, "err", err)
		return http.StatusInternalServerError, errorResponse{Error: msgRelayFailed, Details: err.Error()}
	}
	if ucErr.Code == usecase.ErrorInvalidInput {
		return http.StatusBadRequest, errorResponse{Error: msgMessageRequired}
	}
	attrs := []any{
		"correlation_id", correlationID,
		"code", ucErr.Code,
		"reason", ucErr.Reason,
		"err", ucErr.Err,
	}
	var statusErr httpStatusCoder
	if errors.As(ucErr.Err, &statusErr) {
		attrs = append(attrs, "upstream_status", statusErr.HTTPStatusCode())
	}
	h.logger.Error("chat relay failed", attrs...)
	return http.StatusInternalServerError, errorResponse{Error: msgRelayFailed, Details: ucErr.Detail}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// messageText returns the text to relay for a raw message value. Falsy
// values (absent, null, false, 0, "") yield "". Other non-string values are
// forwarded as their compact JSON text.
func messageText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if !t {
			return "", nil
		}
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return "", nil
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *Handler) health() (int, any) {
	out := h.uc.Health()
	return http.StatusOK, healthResponse{Status: out.Status, Timestamp: out.Timestamp, Model: out.Model}
}

func marshalBody(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"` + msgRelayFailed + `"}`)
	}
	return b
}

// correlationIDOr returns id when set, else a new v4 UUID.
func correlationIDOr(id string) string {
	id = strings.TrimSpace(id)
	if id != "" {
		return id
	}
	return newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
