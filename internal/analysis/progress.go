package analysis

import (
	"context"
	"sync"

	"dispute-backend/internal/shared/telemetry"
)

// ProgressEvent is published after every checkpoint so subscribers can
// surface pipeline status without polling the job record.
type ProgressEvent struct {
	CaseID   string `json:"caseId"`
	JobID    string `json:"jobId"`
	Phase    string `json:"phase"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
}

// ProgressPublisher receives progress events. Publish must not block the
// pipeline; implementations should be fast or buffer internally.
type ProgressPublisher interface {
	Publish(ctx context.Context, event ProgressEvent)
}

// LogPublisher writes progress events to the structured log.
type LogPublisher struct{}

// Publish logs the event.
func (LogPublisher) Publish(ctx context.Context, event ProgressEvent) {
	_ = ctx
	telemetry.Info("analysis.progress", map[string]any{
		"case_id":  event.CaseID,
		"job_id":   event.JobID,
		"phase":    event.Phase,
		"progress": event.Progress,
		"message":  event.Message,
	})
}

// MemoryPublisher records events in memory; used by tests and local
// subscribers.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []ProgressEvent
}

// Publish appends the event.
func (p *MemoryPublisher) Publish(ctx context.Context, event ProgressEvent) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []ProgressEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ProgressEvent(nil), p.events...)
}
