package model

import (
	"context"
	"sync"
)

// UsageTracker wraps a Model and accumulates token usage across every final
// response it produces. Safe for concurrent use.
type UsageTracker struct {
	inner Model

	mu    sync.Mutex
	usage TokenUsage
}

var _ Model = (*UsageTracker)(nil)

// TrackUsage wraps m with usage accounting.
func TrackUsage(m Model) *UsageTracker {
	return &UsageTracker{inner: m}
}

// Generate implements the Model interface, forwarding the stream untouched
// while recording usage from final responses.
func (t *UsageTracker) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	innerResp, innerErr := t.inner.Generate(ctx, req)

	out := make(chan Response, 16)
	go func() {
		defer close(out)
		for resp := range innerResp {
			if !resp.Partial && resp.Usage != nil {
				t.mu.Lock()
				t.usage.Add(*resp.Usage)
				t.mu.Unlock()
			}
			out <- resp
		}
	}()

	return out, innerErr
}

// Info implements the Model interface.
func (t *UsageTracker) Info() Info { return t.inner.Info() }

// Usage returns the accumulated token usage.
func (t *UsageTracker) Usage() TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage
}
