// Package signal standardizes webhook alerts and keeps the audit trail of what was done with them.
package signal

import (
	"encoding/json"
	"time"

	"webhook-trader-go/internal/execution"
)

// Alert is the payload TradingView posts for a strategy order:
//
//	{"strategy": "{{strategy.order.alert_message}}", "action": "{{strategy.order.action}}",
//	 "ticker": "{{ticker}}", "price": {{close}}, "qty": {{strategy.order.contracts}}, "timestamp": "{{timenow}}"}
type Alert struct {
	Strategy  string  `json:"strategy"`
	Action    string  `json:"action"`
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Qty       float64 `json:"qty"`
	Timestamp *string `json:"timestamp"`
}

// Status is the lifecycle state of a recorded signal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFilled    Status = "filled"
	StatusFailed    Status = "failed"
	StatusRawLogged Status = "raw_logged"
)

// Signal is one received alert and its outcome. The ID is assigned by History.Append.
type Signal struct {
	ID          int64                  `json:"id"`
	Strategy    string                 `json:"strategy,omitempty"`
	Action      execution.Side         `json:"action,omitempty"`
	Ticker      string                 `json:"ticker,omitempty"`
	Price       float64                `json:"price,omitempty"`
	Qty         float64                `json:"qty,omitempty"`
	RawPayload  json.RawMessage        `json:"raw_payload,omitempty"`
	Status      Status                 `json:"status"`
	OrderResult *execution.OrderResult `json:"order_result"`
	Error       string                 `json:"error,omitempty"`
	ReceivedAt  time.Time              `json:"received_at"`
	ClientIP    string                 `json:"client_ip"`
}

// Fill seals a pending signal with the executed order.
func (s *Signal) Fill(result execution.OrderResult) {
	s.Status = StatusFilled
	s.OrderResult = &result
}

// Fail seals a pending signal with the execution error.
func (s *Signal) Fail(err error) {
	s.Status = StatusFailed
	s.Error = err.Error()
}
