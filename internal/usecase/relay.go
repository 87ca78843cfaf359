package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"groq-relay/internal/domain"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
	statusOK           = "OK"
	unknownUpstreamMsg = "Unknown error"

	// timestampLayout matches ISO-8601 with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type LLMClient interface {
	Complete(ctx context.Context, in domain.CompletionRequest) (string, error)
}

type upstreamMessager interface {
	UpstreamMessage() string
}

type RelayService struct {
	llm   LLMClient
	model string
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Response string
	Model    string
}

type HealthOutput struct {
	Status    string
	Timestamp string
	Model     string
}

// NewRelayService returns a service relaying to llm with the given model, or
// domain.DefaultModel when model is blank.
func NewRelayService(llm LLMClient, model string) (*RelayService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = domain.DefaultModel
	}
	return &RelayService{llm: llm, model: model}, nil
}

// Model reports the upstream model name in use.
func (s *RelayService) Model() string {
	return s.model
}

// Chat forwards a single user message upstream. The upstream call is not
// cancelled when ctx is; it runs until the transport returns.
func (s *RelayService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if in.Message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", "", nil)
	}

	text, err := s.llm.Complete(context.WithoutCancel(ctx), domain.CompletionRequest{
		Model: s.model,
		Messages: []domain.ChatMessage{
			{Role: "user", Content: in.Message},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		if msg, ok := upstreamMessage(err); ok {
			if msg == "" {
				msg = unknownUpstreamMsg
			}
			return ChatOutput{}, newError(ErrorUpstream, "groq_error", "Groq API Error: "+msg, err)
		}
		return ChatOutput{}, newError(ErrorInternal, "relay_error", err.Error(), err)
	}

	return ChatOutput{
		Response: text,
		Model:    s.model,
	}, nil
}

func (s *RelayService) Health() HealthOutput {
	return HealthOutput{
		Status:    statusOK,
		Timestamp: now().UTC().Format(timestampLayout),
		Model:     s.model,
	}
}

func upstreamMessage(err error) (string, bool) {
	var m upstreamMessager
	if !errors.As(err, &m) {
		return "", false
	}
	return m.UpstreamMessage(), true
}

var now = time.Now
