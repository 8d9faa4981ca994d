package analysis

import (
	"context"
	"errors"

	"dispute-backend/internal/llm"
)

// fakeProvider returns canned completions in order, repeating the last
// one once exhausted. A nil entry's err is returned instead.
type fakeProvider struct {
	responses []fakeResponse
	calls     int
	prompts   []string
}

type fakeResponse struct {
	text   string
	tokens int
	err    error
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	if err := ctx.Err(); err != nil {
		return llm.Completion{}, err
	}
	f.prompts = append(f.prompts, req.Prompt)
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	if idx < 0 {
		return llm.Completion{}, errors.New("no responses configured")
	}
	resp := f.responses[idx]
	if resp.err != nil {
		return llm.Completion{}, resp.err
	}
	return llm.Completion{Text: resp.text, Model: req.Model, TokensUsed: resp.tokens}, nil
}

// failingProvider always errors.
type failingProvider struct{ err error }

func (f failingProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	_ = ctx
	_ = req
	return llm.Completion{}, f.err
}
