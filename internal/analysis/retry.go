package analysis

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"dispute-backend/internal/llm"

	"dispute-backend/internal/shared/telemetry"
)

const providerRetryBaseDelay = 300 * time.Millisecond

// retryingProvider retries one transient provider failure before the
// phase's heuristic fallback takes over.
type retryingProvider struct {
	base  llm.Provider
	jobID string
}

func newRetryingProvider(base llm.Provider, jobID string) llm.Provider {
	if base == nil {
		return nil
	}
	return retryingProvider{base: base, jobID: jobID}
}

func (r retryingProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	resp, err := r.base.Complete(ctx, req)
	if err == nil || !isTransientProviderError(err) {
		return resp, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"job_id": r.jobID,
		"error":  err.Error(),
	})
	select {
	case <-time.After(providerRetryBaseDelay):
	case <-ctx.Done():
		return llm.Completion{}, ctx.Err()
	}

	return r.base.Complete(ctx, req)
}

func isTransientProviderError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "rate limit") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
