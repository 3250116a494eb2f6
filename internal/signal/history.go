package signal

import (
	"sync"
)

// History stores signals in memory in arrival order. Ids keep increasing across Clear.
type History struct {
	mu      sync.Mutex
	lastID  int64
	signals []Signal
}

// NewHistory creates an empty history optionally pre-sizing storage.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{signals: make([]Signal, 0, capacity)}
}

// Append assigns the next id, stores the signal and returns the id.
func (h *History) Append(s Signal) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastID++
	s.ID = h.lastID
	h.signals = append(h.signals, s)
	return s.ID
}

// Recent returns up to limit signals, newest first. limit <= 0 returns everything.
func (h *History) Recent(limit int) []Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.signals)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Signal, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, h.signals[i])
	}
	return out
}

// Len reports how many signals are currently held.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.signals)
}

// Clear drops all stored signals. The id counter is not reset.
func (h *History) Clear() {
	h.mu.Lock()
	h.signals = nil
	h.mu.Unlock()
}
