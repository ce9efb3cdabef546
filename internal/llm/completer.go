// Package llm wraps the generative-text provider behind a completion
// interface and implements the menu synthesis contracts on top of it.
package llm

import "context"

// Prompt is one system+user message pair sent to the provider.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// Completer executes a single completion request and returns the raw
// response text. Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
