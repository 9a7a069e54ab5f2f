package programcache

import (
	"time"

	"go.trai.ch/progcache/internal/core/domain"
)

// Reclaim simulates the garbage collector reclaiming the heavy pair of key.
func (m *Manager) Reclaim(key domain.CacheKey) {
	if entry, ok := m.entries.Peek(key); ok {
		m.heavy.reclaim(entry.Handle)
	}
}

// PinnedLen returns the number of strongly pinned heavy pairs.
func (m *Manager) PinnedLen() int {
	return m.heavy.pinned.Len()
}

// SetClock replaces the manager's clock.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}
