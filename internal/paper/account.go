package paper

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webhook-trader-go/internal/exchange"
	"webhook-trader-go/internal/execution"
	"webhook-trader-go/internal/metrics"
)

const (
	// DefaultSlippageBps bounds the simulated slippage to +-0.1%.
	DefaultSlippageBps = 10

	// DefaultTradeLimit is how many fills the journal keeps for inspection.
	DefaultTradeLimit = 1000
)

// ErrMalformedTicker means the ticker could not be split into BASE/QUOTE.
var ErrMalformedTicker = errors.New("malformed ticker")

// InsufficientBalanceError is returned when an order would overdraw an asset. Nothing is mutated.
type InsufficientBalanceError struct {
	Asset     string
	Needed    float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient %s balance. Need %s, have %s", e.Asset, formatAmount(e.Needed), formatAmount(e.Available))
}

// DefaultBalances is the starting allocation used when none is configured.
func DefaultBalances() map[string]float64 {
	return map[string]float64{"USDT": 10000, "BTC": 0, "ETH": 0, "SOL": 0}
}

// Account is a simulated multi-asset balance sheet. All mutations happen under one mutex.
type Account struct {
	mu       sync.Mutex
	balances map[string]float64
	orders   int64
	slippage float64
	random   func() float64
	now      func() time.Time
	ledger   *Ledger
	log      zerolog.Logger
}

// Option configures Account construction parameters.
type Option func(*Account)

// WithSlippageBps overrides the maximum absolute slippage in basis points.
func WithSlippageBps(bps float64) Option {
	return func(a *Account) {
		if bps >= 0 {
			a.slippage = bps / 10_000
		}
	}
}

// WithRandom injects the uniform [0,1) source used for slippage.
func WithRandom(fn func() float64) Option {
	return func(a *Account) {
		if fn != nil {
			a.random = fn
		}
	}
}

// WithClock overrides time.Now for fill timestamps.
func WithClock(fn func() time.Time) Option {
	return func(a *Account) {
		if fn != nil {
			a.now = fn
		}
	}
}

// WithTradeLimit bounds the fill journal; n <= 0 keeps every fill.
func WithTradeLimit(n int) Option {
	return func(a *Account) { a.ledger = NewLedger(n) }
}

// WithLogger attaches a logger for fill events.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Account) { a.log = log }
}

// NewAccount constructs an account seeded with the starting balances.
func NewAccount(starting map[string]float64, opts ...Option) *Account {
	if starting == nil {
		starting = DefaultBalances()
	}
	a := &Account{
		balances: make(map[string]float64, len(starting)),
		slippage: DefaultSlippageBps / 10_000.0,
		random:   rand.Float64,
		now:      time.Now,
		ledger:   NewLedger(DefaultTradeLimit),
		log:      zerolog.Nop(),
	}
	for asset, amount := range starting {
		a.balances[asset] = amount
	}
	for _, opt := range opts {
		opt(a)
	}
	a.publish()
	return a
}

// ApplyOrder simulates a market fill. The balance check and the mutation use the reference
// price; the reported fill price and cost include slippage.
func (a *Account) ApplyOrder(intent execution.Intent) (execution.OrderResult, error) {
	base, quote, ok := exchange.SplitPair(intent.Ticker)
	if !ok {
		return execution.OrderResult{}, fmt.Errorf("%w: %q", ErrMalformedTicker, intent.Ticker)
	}
	if !positive(intent.Qty) {
		return execution.OrderResult{}, errors.New("quantity must be positive")
	}
	if !positive(intent.Price) {
		return execution.OrderResult{}, errors.New("price must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	qty := decimal.NewFromFloat(intent.Qty)
	cost := qty.Mul(decimal.NewFromFloat(intent.Price))
	switch intent.Side {
	case execution.Buy:
		if have := decimal.NewFromFloat(a.balances[quote]); have.LessThan(cost) {
			return execution.OrderResult{}, &InsufficientBalanceError{Asset: quote, Needed: cost.InexactFloat64(), Available: a.balances[quote]}
		}
		a.adjust(quote, cost.Neg())
		a.adjust(base, qty)

	case execution.Sell:
		if have := decimal.NewFromFloat(a.balances[base]); have.LessThan(qty) {
			return execution.OrderResult{}, &InsufficientBalanceError{Asset: base, Needed: intent.Qty, Available: a.balances[base]}
		}
		a.adjust(base, qty.Neg())
		a.adjust(quote, cost)

	default:
		return execution.OrderResult{}, fmt.Errorf("unknown order side %q", intent.Side)
	}

	slip := (a.random()*2 - 1) * a.slippage
	fill := intent.Price * (1 + slip)
	a.orders++

	result := execution.OrderResult{
		OrderID:        "paper_" + strconv.FormatInt(a.orders, 10),
		Mode:           execution.ModePaper,
		Action:         intent.Side,
		Ticker:         intent.Ticker,
		Qty:            intent.Qty,
		RequestedPrice: intent.Price,
		FillPrice:      round(fill, 2),
		Cost:           round(intent.Qty*fill, 2),
		FilledAt:       a.now(),
		PaperDetails: &execution.PaperDetails{
			SlippagePct:  round(slip*100, 4),
			BalanceAfter: a.snapshotLocked(),
		},
	}
	a.ledger.Record(result)
	a.publish()

	a.log.Info().Str("order_id", result.OrderID).Str("side", string(intent.Side)).Str("ticker", intent.Ticker).
		Float64("qty", intent.Qty).Float64("px", fill).Float64("slippage_pct", slip*100).Msg("paper fill")
	return result, nil
}

// adjust applies delta in decimal so a debit of the whole balance lands exactly on zero.
// Callers check the balance covers any debit first.
func (a *Account) adjust(asset string, delta decimal.Decimal) {
	a.balances[asset] = decimal.NewFromFloat(a.balances[asset]).Add(delta).InexactFloat64()
}

// Balances returns a copy of all balances rounded to 6 decimals.
func (a *Account) Balances() map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Balance returns the unrounded balance of one asset.
func (a *Account) Balance(asset string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balances[asset]
}

// Trades returns the journaled paper fills, oldest first.
func (a *Account) Trades() []execution.OrderResult {
	return a.ledger.Snapshot()
}

// Trade looks up a journaled fill by order id.
func (a *Account) Trade(orderID string) (execution.OrderResult, bool) {
	return a.ledger.Find(orderID)
}

// TradeCount reports how many paper fills have been executed since start.
func (a *Account) TradeCount() int { return a.ledger.Total() }

func (a *Account) snapshotLocked() map[string]float64 {
	out := make(map[string]float64, len(a.balances))
	for asset, amount := range a.balances {
		out[asset] = round(amount, 6)
	}
	return out
}

// publish must be called with mu held (or before the account is shared).
func (a *Account) publish() {
	assets := make([]string, 0, len(a.balances))
	for asset := range a.balances {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	for _, asset := range assets {
		metrics.PaperBalance.WithLabelValues(asset).Set(a.balances[asset])
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(8).String()
}
