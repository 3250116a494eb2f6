package signal

import (
	"errors"
	"fmt"
	"strings"

	"webhook-trader-go/internal/execution"
)

// FallbackQty is used when neither the alert nor the default table provides a quantity.
const FallbackQty = 0.001

// ErrInvalidAction rejects alerts whose action is not buy or sell.
var ErrInvalidAction = errors.New("invalid action")

// Validate normalizes the action and resolves the order quantity. ticker must already be normalized
// so it can be looked up in defaults.
func Validate(action string, qty float64, ticker string, defaults map[string]float64) (execution.Side, float64, error) {
	side := execution.Side(strings.ToLower(strings.TrimSpace(action)))
	if side != execution.Buy && side != execution.Sell {
		return "", 0, fmt.Errorf("%w: %s. Must be 'buy' or 'sell'", ErrInvalidAction, action)
	}
	return side, ResolveQty(qty, ticker, defaults), nil
}

// ResolveQty never fails: explicit qty, then the default table, then FallbackQty.
func ResolveQty(qty float64, ticker string, defaults map[string]float64) float64 {
	if qty > 0 {
		return qty
	}
	if def, ok := defaults[ticker]; ok && def > 0 {
		return def
	}
	return FallbackQty
}
