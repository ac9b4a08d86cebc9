package agent

import (
	"sync"

	"github.com/mfinkle/llm-agents/pkg/llms"
)

// UsageTracker accumulates token usage. Trackers are owned by their
// agent or conversation, never shared through package state.
type UsageTracker struct {
	mu    sync.Mutex
	usage llms.TokenUsage
}

// NewUsageTracker returns a zeroed tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Add accumulates one call's usage.
func (t *UsageTracker) Add(usage llms.TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Add(usage)
}

// Snapshot returns the current totals.
func (t *UsageTracker) Snapshot() llms.TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}

// Reset zeroes the totals.
func (t *UsageTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = llms.TokenUsage{}
}
