package execution

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/metrics"
)

// Engine routes intents to the paper venue or the live gateway depending on its mode.
type Engine struct {
	mode  Mode
	paper PaperVenue
	live  Gateway
	log   zerolog.Logger
	now   func() time.Time
}

// NewEngine builds an engine for a fixed mode. A live engine may be built with a nil
// gateway; every order then fails with ErrGatewayUnavailable.
func NewEngine(mode Mode, paper PaperVenue, live Gateway, log zerolog.Logger) (*Engine, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if mode == ModePaper && paper == nil {
		return nil, errors.New("paper mode requires a paper venue")
	}
	return &Engine{mode: mode, paper: paper, live: live, log: log, now: time.Now}, nil
}

// Mode reports the configured execution mode.
func (e *Engine) Mode() Mode { return e.mode }

// Exchange names the live venue, or "paper".
func (e *Engine) Exchange() string {
	if e.mode == ModeLive && e.live != nil {
		return e.live.Name()
	}
	return string(ModePaper)
}

// IsConnected is always true in paper mode and mirrors the gateway otherwise.
func (e *Engine) IsConnected() bool {
	if e.mode == ModePaper {
		return true
	}
	return e.live != nil && e.live.IsConnected()
}

// Execute runs the intent on the configured backend. Backend errors are returned unchanged.
func (e *Engine) Execute(ctx context.Context, intent Intent) (OrderResult, error) {
	var (
		result OrderResult
		err    error
	)
	switch e.mode {
	case ModePaper:
		result, err = e.paper.ApplyOrder(intent)
	default:
		result, err = e.executeLive(ctx, intent)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OrdersTotal.WithLabelValues(string(e.mode), string(intent.Side), outcome).Inc()
	if err != nil {
		e.log.Error().Err(err).Str("mode", string(e.mode)).Str("ticker", intent.Ticker).Str("side", string(intent.Side)).Float64("qty", intent.Qty).Msg("order failed")
		return OrderResult{}, err
	}
	e.log.Info().Str("mode", string(e.mode)).Str("order_id", result.OrderID).Str("ticker", result.Ticker).Str("side", string(result.Action)).Float64("qty", result.Qty).Float64("px", result.FillPrice).Msg("order filled")
	return result, nil
}

func (e *Engine) executeLive(ctx context.Context, intent Intent) (OrderResult, error) {
	if e.live == nil || !e.live.IsConnected() {
		return OrderResult{}, ErrGatewayUnavailable
	}
	order, err := e.live.PlaceMarketOrder(ctx, intent)
	if err != nil {
		return OrderResult{}, err
	}

	fill := order.AvgPrice
	if fill <= 0 {
		fill = order.Price
	}
	if fill <= 0 {
		fill = intent.Price
	}
	return OrderResult{
		OrderID:        "live_" + order.ID,
		Mode:           ModeLive,
		Action:         intent.Side,
		Ticker:         intent.Ticker,
		Qty:            intent.Qty,
		RequestedPrice: intent.Price,
		FillPrice:      fill,
		Cost:           intent.Qty * fill,
		FilledAt:       e.now(),
		LiveDetails: &LiveDetails{
			Exchange:    e.live.Name(),
			Status:      order.Status,
			RawResponse: order.Raw,
		},
	}, nil
}
