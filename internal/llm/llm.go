package llm

import (
	"context"
	"errors"
)

// Provider abstracts the natural-language inference backend. The pipeline
// only ever needs a single text completion per call; everything else
// (prompt construction, JSON extraction, fallbacks) lives with the caller
// so tests can substitute a deterministic fake.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// CompletionRequest carries one inference call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Completion is the provider's response.
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}

// ErrNotConfigured is returned by the placeholder provider.
var ErrNotConfigured = errors.New("llm provider not configured")

// Placeholder is used when no provider is wired; every phase then runs
// on its heuristic fallback.
type Placeholder struct{}

// Complete returns ErrNotConfigured.
func (Placeholder) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	_ = ctx
	_ = req
	return Completion{}, ErrNotConfigured
}
