package paper

import (
	"sync"

	"webhook-trader-go/internal/execution"
)

// Ledger journals paper fills oldest first. With a positive limit only the newest limit fills
// are retained; Total still counts every fill ever recorded.
type Ledger struct {
	mu    sync.Mutex
	limit int
	total int
	fills []execution.OrderResult
}

// NewLedger creates a journal. limit <= 0 keeps every fill.
func NewLedger(limit int) *Ledger {
	if limit < 0 {
		limit = 0
	}
	return &Ledger{limit: limit}
}

// Record appends a fill, evicting the oldest beyond the limit.
func (l *Ledger) Record(fill execution.OrderResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total++
	l.fills = append(l.fills, fill)
	if l.limit > 0 && len(l.fills) > l.limit {
		drop := len(l.fills) - l.limit
		l.fills = append(l.fills[:0:0], l.fills[drop:]...)
	}
}

// Snapshot returns a copy of the retained fills.
func (l *Ledger) Snapshot() []execution.OrderResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.OrderResult, len(l.fills))
	copy(out, l.fills)
	return out
}

// Find looks up a retained fill by order id.
func (l *Ledger) Find(orderID string) (execution.OrderResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.fills) - 1; i >= 0; i-- {
		if l.fills[i].OrderID == orderID {
			return l.fills[i], true
		}
	}
	return execution.OrderResult{}, false
}

// Len is the number of retained fills.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fills)
}

// Total is the number of fills ever recorded.
func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}
