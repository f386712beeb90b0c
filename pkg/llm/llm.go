// Package llm wraps the chat-completion providers used for criteria
// extraction and grounded question answering.
package llm

import (
	"context"
	"errors"
)

// Request is one single-turn chat completion.
type Request struct {
	Model     string
	System    string
	User      string
	MaxTokens int
	// JSON asks the provider to return a JSON object.
	JSON bool
}

// Client completes a single-turn chat request and returns the reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyCompletion is returned when the provider answered without content.
var ErrEmptyCompletion = errors.New("llm returned no content")
