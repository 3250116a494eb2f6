package risk

import (
	"errors"
	"fmt"
)

// ErrNotionalLimit is returned when a single order exceeds MaxNotionalPerTrade.
var ErrNotionalLimit = errors.New("notional limit exceeded")

// Limits bounds order size. Zero values disable a limit.
type Limits struct {
	MaxNotionalPerTrade float64
}

func (l Limits) Allow(notional float64) bool {
	return l.MaxNotionalPerTrade <= 0 || notional <= l.MaxNotionalPerTrade
}

// Check is Allow with an error suitable for recording on a failed signal.
func (l Limits) Check(qty, price float64) error {
	notional := qty * price
	if l.Allow(notional) {
		return nil
	}
	return fmt.Errorf("%w: %.2f > %.2f", ErrNotionalLimit, notional, l.MaxNotionalPerTrade)
}
