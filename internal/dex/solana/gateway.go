package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

const gatewayName = "jupiter"

// Gateway executes BASE/QUOTE market orders as Jupiter swaps between the configured SPL mints.
// A buy fixes the base amount received (ExactOut); a sell fixes the base amount spent (ExactIn).
type Gateway struct {
	jup         *JupiterClient
	tokens      map[string]config.Token
	slippageBps int
	connected   bool
	log         zerolog.Logger
}

// NewGateway builds the adapter. A missing or undecodable wallet key leaves it disconnected.
func NewGateway(dex config.Dex, wallet config.Wallet, log zerolog.Logger) *Gateway {
	log = log.With().Str("exchange", gatewayName).Logger()
	g := &Gateway{
		tokens:      make(map[string]config.Token, len(dex.Tokens)),
		slippageBps: dex.SlippageBps,
		log:         log,
	}
	for sym, tok := range dex.Tokens {
		g.tokens[strings.ToUpper(sym)] = tok
	}
	key, err := ParsePrivateKey(wallet.PrivateKeyBase58)
	if err != nil {
		log.Warn().Err(err).Msg("solana wallet unavailable")
		return g
	}
	g.jup = NewJupiterClient(dex.RpcURL, dex.JupiterBase, key, dex.Commitment)
	g.connected = true
	return g
}

func (g *Gateway) Name() string      { return gatewayName }
func (g *Gateway) IsConnected() bool { return g.connected }

// PlaceMarketOrder quotes and submits the swap. The returned order id is the transaction signature
// and AvgPrice is derived from the quoted in/out amounts.
func (g *Gateway) PlaceMarketOrder(ctx context.Context, intent execution.Intent) (execution.BrokerOrder, error) {
	if !g.connected {
		return execution.BrokerOrder{}, execution.ErrGatewayUnavailable
	}
	baseSym, quoteSym, ok := strings.Cut(intent.Ticker, "/")
	if !ok {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: fmt.Sprintf("malformed ticker %q", intent.Ticker)}
	}
	base, ok := g.tokens[baseSym]
	if !ok {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: "no mint configured for " + baseSym}
	}
	quote, ok := g.tokens[quoteSym]
	if !ok {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: "no mint configured for " + quoteSym}
	}

	amount, err := toUnits(intent.Qty, base.Decimals)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: "invalid quantity", Err: err}
	}
	in, out, mode := quote.Mint, base.Mint, SwapModeExactOut
	if intent.Side == execution.Sell {
		in, out, mode = base.Mint, quote.Mint, SwapModeExactIn
	}

	q, err := g.jup.GetQuote(ctx, in, out, amount, g.slippageBps, mode)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: "quote failed", Err: err}
	}
	sig, err := g.jup.BuildAndSendSwap(ctx, q)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: gatewayName, Reason: "swap failed", Err: err}
	}

	baseAmt, quoteAmt := q.OutAmount, q.InAmount
	if intent.Side == execution.Sell {
		baseAmt, quoteAmt = q.InAmount, q.OutAmount
	}
	raw, _ := json.Marshal(q)
	order := execution.BrokerOrder{
		ID:       sig.String(),
		Status:   "submitted",
		AvgPrice: quotedPrice(baseAmt, base.Decimals, quoteAmt, quote.Decimals),
		Raw:      raw,
	}
	g.log.Info().Str("ticker", intent.Ticker).Str("side", string(intent.Side)).Str("sig", order.ID).
		Float64("px", order.AvgPrice).Int("slippage_bps", g.slippageBps).Msg("jupiter swap submitted")
	return order, nil
}

// toUnits converts a UI amount to the mint's smallest unit, rounding down.
func toUnits(qty float64, decimals int) (uint64, error) {
	units := decimal.NewFromFloat(qty).Shift(int32(decimals)).Floor()
	if !units.IsPositive() {
		return 0, fmt.Errorf("%v rounds to zero at %d decimals", qty, decimals)
	}
	if units.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%v overflows at %d decimals", qty, decimals)
	}
	return uint64(units.IntPart()), nil
}

// quotedPrice is quote UI amount per base UI amount, or 0 when either side is unparsable.
func quotedPrice(baseAmt string, baseDec int, quoteAmt string, quoteDec int) float64 {
	b, err := decimal.NewFromString(baseAmt)
	if err != nil || b.IsZero() {
		return 0
	}
	q, err := decimal.NewFromString(quoteAmt)
	if err != nil {
		return 0
	}
	return q.Shift(-int32(quoteDec)).Div(b.Shift(-int32(baseDec))).InexactFloat64()
}
