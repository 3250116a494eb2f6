// Package pipeline turns inbound alerts into executed (or failed) signals.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/exchange"
	"webhook-trader-go/internal/execution"
	"webhook-trader-go/internal/metrics"
	"webhook-trader-go/internal/risk"
	"webhook-trader-go/internal/signal"
)

// Executor runs a validated intent. *execution.Engine satisfies it.
type Executor interface {
	Execute(ctx context.Context, intent execution.Intent) (execution.OrderResult, error)
}

// Response is returned to the webhook caller.
type Response struct {
	Status      signal.Status          `json:"status"`
	Message     string                 `json:"message"`
	SignalID    int64                  `json:"signal_id"`
	OrderResult *execution.OrderResult `json:"order_result"`
}

// Pipeline is safe for concurrent use; the engine and history serialize their own state.
type Pipeline struct {
	engine   Executor
	history  *signal.History
	defaults map[string]float64
	limits   risk.Limits
	log      zerolog.Logger
	now      func() time.Time
}

// New wires a pipeline. defaults maps normalized tickers to the quantity used when an alert omits qty.
func New(engine Executor, history *signal.History, defaults map[string]float64, limits risk.Limits, log zerolog.Logger) *Pipeline {
	table := make(map[string]float64, len(defaults))
	for ticker, qty := range defaults {
		table[ticker] = qty
	}
	return &Pipeline{
		engine:   engine,
		history:  history,
		defaults: table,
		limits:   limits,
		log:      log,
		now:      time.Now,
	}
}

// Process validates and executes one alert. Only validation failures return an error; execution
// failures are recorded on the signal and reported through Response.Status.
func (p *Pipeline) Process(ctx context.Context, alert signal.Alert, source string) (Response, error) {
	p.log.Info().Str("client_ip", source).Str("strategy", alert.Strategy).Str("action", alert.Action).
		Str("ticker", alert.Ticker).Float64("px", alert.Price).Float64("qty", alert.Qty).Msg("webhook received")

	ticker := exchange.Normalize(alert.Ticker)
	side, qty, err := signal.Validate(alert.Action, alert.Qty, ticker, p.defaults)
	if err != nil {
		p.log.Warn().Err(err).Str("action", alert.Action).Msg("signal rejected")
		return Response{}, err
	}

	raw, err := json.Marshal(alert)
	if err != nil {
		return Response{}, fmt.Errorf("encode alert: %w", err)
	}
	sig := signal.Signal{
		Strategy:   alert.Strategy,
		Action:     side,
		Ticker:     ticker,
		Price:      alert.Price,
		Qty:        qty,
		RawPayload: raw,
		Status:     signal.StatusPending,
		ReceivedAt: p.now(),
		ClientIP:   source,
	}

	if err := p.limits.Check(qty, alert.Price); err != nil {
		sig.Fail(err)
	} else {
		result, err := p.engine.Execute(ctx, execution.Intent{Side: side, Ticker: ticker, Qty: qty, Price: alert.Price})
		if err != nil {
			sig.Fail(err)
		} else {
			sig.Fill(result)
		}
	}

	id := p.history.Append(sig)
	metrics.SignalsTotal.WithLabelValues(string(sig.Status)).Inc()

	msg := Describe(side, qty, ticker, alert.Price)
	evt := p.log.Info()
	if sig.Status == signal.StatusFailed {
		evt = p.log.Error().Str("err", sig.Error)
	}
	evt.Int64("signal_id", id).Str("status", string(sig.Status)).Msg(msg)

	return Response{Status: sig.Status, Message: msg, SignalID: id, OrderResult: sig.OrderResult}, nil
}

// RecordRaw stores an arbitrary body for debugging what the alert source actually sends.
func (p *Pipeline) RecordRaw(body json.RawMessage, source string) int64 {
	id := p.history.Append(signal.Signal{
		RawPayload: body,
		Status:     signal.StatusRawLogged,
		ReceivedAt: p.now(),
		ClientIP:   source,
	})
	metrics.SignalsTotal.WithLabelValues(string(signal.StatusRawLogged)).Inc()
	p.log.Info().Int64("signal_id", id).Str("client_ip", source).RawJSON("body", body).Msg("raw webhook received")
	return id
}

// Describe renders "BUY 0.01 BTC/USDT @ $50000".
func Describe(side execution.Side, qty float64, ticker string, price float64) string {
	return fmt.Sprintf("%s %s %s @ $%s", strings.ToUpper(string(side)), formatNumber(qty), ticker, formatNumber(price))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
