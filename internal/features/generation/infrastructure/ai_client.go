package infrastructure

import (
	"context"
	"errors"
)

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ErrNoChoices is returned when the provider answers without any choice.
var ErrNoChoices = errors.New("completion returned no choices")

// ChatClient defines a generic interface for chat completion services
type ChatClient interface {
	// Complete returns the content of the first choice.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// UserPrompt wraps content as a single user message.
func UserPrompt(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}
