// Package execution handles order lifecycle and interaction with venues.
package execution

import (
	"context"
	"encoding/json"
	"time"
)

// Side enumerates order directions used by the engine.
type Side string

const (
	// Buy spends quote currency to acquire base.
	Buy Side = "buy"
	// Sell spends base currency to acquire quote.
	Sell Side = "sell"
)

// Mode selects where intents are executed. It is fixed for the lifetime of an Engine.
type Mode string

const (
	// ModePaper executes against the in-memory paper account.
	ModePaper Mode = "paper"
	// ModeLive forwards orders to a real exchange gateway.
	ModeLive Mode = "live"
)

// ParseMode maps a configuration string onto a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModePaper, ModeLive:
		return Mode(raw), nil
	default:
		return "", &UnknownModeError{Mode: raw}
	}
}

// Intent is a validated, normalized order request. It is consumed once by the engine.
type Intent struct {
	Side   Side
	Ticker string // BASE/QUOTE
	Qty    float64
	Price  float64 // reference price from the alert
}

// PaperDetails carries paper-only fields of an OrderResult.
type PaperDetails struct {
	SlippagePct  float64            `json:"slippage_pct"`
	BalanceAfter map[string]float64 `json:"balance_after"`
}

// LiveDetails carries broker-specific fields of an OrderResult.
type LiveDetails struct {
	Exchange    string          `json:"exchange"`
	Status      string          `json:"status"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// OrderResult is the uniform record of an executed order. Callers must treat it as immutable.
type OrderResult struct {
	OrderID        string    `json:"order_id"`
	Mode           Mode      `json:"mode"`
	Action         Side      `json:"action"`
	Ticker         string    `json:"ticker"`
	Qty            float64   `json:"qty"`
	RequestedPrice float64   `json:"requested_price"`
	FillPrice      float64   `json:"fill_price"`
	Cost           float64   `json:"cost"`
	FilledAt       time.Time `json:"filled_at"`

	*PaperDetails
	*LiveDetails
}

// BrokerOrder is what a live exchange reports back for a market order.
type BrokerOrder struct {
	ID       string
	Status   string
	AvgPrice float64 // average fill, 0 when the venue does not report it
	Price    float64 // quoted price, 0 when unknown
	Raw      json.RawMessage
}

// Gateway is the capability every live exchange adapter exposes.
type Gateway interface {
	Name() string
	IsConnected() bool
	PlaceMarketOrder(ctx context.Context, intent Intent) (BrokerOrder, error)
}

// PaperVenue applies intents to a simulated balance sheet.
type PaperVenue interface {
	ApplyOrder(intent Intent) (OrderResult, error)
}
