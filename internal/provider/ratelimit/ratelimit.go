package ratelimit

import (
	"context"
	"sync"
	"time"

	"stockdash/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between upstream calls.
// Waiting callers return early when their context is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) History(ctx context.Context, symbol string, w provider.Window) ([]provider.Bar, error) {
	if m.Interval > 0 {
		if err := m.reserve(ctx); err != nil {
			return nil, err
		}
	}
	return m.P.History(ctx, symbol, w)
}

// reserve claims the next free slot so concurrent callers queue up instead
// of all waking at the same instant.
func (m *MinInterval) reserve(ctx context.Context) error {
	m.mu.Lock()
	now := time.Now()
	slot := m.next
	if slot.Before(now) {
		slot = now
	}
	m.next = slot.Add(m.Interval)
	m.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
