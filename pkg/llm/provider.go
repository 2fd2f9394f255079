package llm

import "context"

// Provider is the capability interface for generative-text backends.
// Implementations return the completed text or an explicit error; fallback
// handling is the caller's concern, so callers can be tested without a
// live provider.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single completion request. The pipeline consumes whole
// replies, so the interface is non-streaming.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}
