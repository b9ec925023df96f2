package engine

import (
	"sync"
	"time"

	"github.com/keyscribe/dictation-engine/pkg/metrics"
)

// DefaultHistoryCapacity bounds the in-memory session history. There is no
// persistent transcript store — completed sessions live in this ring until
// newer ones push them out.
const DefaultHistoryCapacity = 32

// HistoryEntry is one completed dictation, as delivered to the host.
type HistoryEntry struct {
	SessionID    string
	Text         string
	Provider     string
	UsedFallback bool
	Latency      metrics.LatencyMetrics
	CompletedAt  time.Time
}

// History is a fixed-capacity ring of completed sessions: an in-memory
// record the host can read back, never persisted. Appends come from the
// coordinator goroutine; reads may come from anywhere, so access is
// serialized here.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	next    int
	full    bool
}

// NewHistory builds a ring holding up to capacity entries. capacity <= 0
// uses DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{entries: make([]HistoryEntry, capacity)}
}

// Add records one completed session, evicting the oldest entry once the
// ring is full.
func (h *History) Add(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns the recorded sessions, newest first.
func (h *History) Recent() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := h.next
	if h.full {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

// Len reports how many sessions are currently held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.full {
		return len(h.entries)
	}
	return h.next
}
