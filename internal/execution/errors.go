package execution

import (
	"errors"
	"fmt"
)

// ErrGatewayUnavailable is returned for live orders while no connected gateway is configured.
var ErrGatewayUnavailable = errors.New("exchange not connected")

// UnknownModeError reports a mode string outside of paper/live.
type UnknownModeError struct {
	Mode string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown execution mode %q", e.Mode)
}

// BrokerError wraps a failure reported by (or while talking to) a live exchange.
type BrokerError struct {
	Exchange string
	Reason   string
	Err      error
}

func (e *BrokerError) Error() string {
	if e.Err != nil && e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Exchange, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Exchange, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Exchange, e.Reason)
}

func (e *BrokerError) Unwrap() error { return e.Err }
