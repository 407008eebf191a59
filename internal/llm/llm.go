// Package llm turns a question and its survey context into a natural-language answer
// using a hosted chat-completion model.
package llm

import (
	"context"
)

// Request is one completion call. Parameters come from process configuration.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	Candidates  int
}

// Completer returns the text of the first candidate for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
