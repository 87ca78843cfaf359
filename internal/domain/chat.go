package domain

// DefaultModel is the upstream model used when none is configured.
const DefaultModel = "llama3-8b-8192"

// ChatMessage is the OpenAI-compatible chat message shape sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}
