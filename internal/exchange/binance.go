package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

// Binance places spot market orders through the official REST API.
type Binance struct {
	client    *binance.Client
	connected bool
	log       zerolog.Logger
}

// NewBinance builds the adapter. Without an API key and secret it stays disconnected.
func NewBinance(creds config.Credentials, testnet bool, log zerolog.Logger, opts ...Option) *Binance {
	o := applyOptions(opts)
	if testnet {
		binance.UseTestnet = true
	}
	client := binance.NewClient(creds.APIKey, creds.APISecret)
	client.HTTPClient = &http.Client{Timeout: o.timeout}
	if o.baseURL != "" {
		client.BaseURL = o.baseURL
	}
	return &Binance{
		client:    client,
		connected: creds.APIKey != "" && creds.APISecret != "",
		log:       log.With().Str("exchange", string(VenueBinance)).Logger(),
	}
}

func (b *Binance) Name() string      { return string(VenueBinance) }
func (b *Binance) IsConnected() bool { return b.connected }

// PlaceMarketOrder submits a MARKET order for intent.Qty base units.
func (b *Binance) PlaceMarketOrder(ctx context.Context, intent execution.Intent) (execution.BrokerOrder, error) {
	if !b.connected {
		return execution.BrokerOrder{}, execution.ErrGatewayUnavailable
	}
	side := binance.SideTypeBuy
	if intent.Side == execution.Sell {
		side = binance.SideTypeSell
	}
	symbol := VenueSymbol(intent.Ticker, "")

	res, err := b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(decimal.NewFromFloat(intent.Qty).String()).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: apiErr.Message, Err: err}
		}
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Err: err}
	}

	raw, _ := json.Marshal(res)
	order := execution.BrokerOrder{
		ID:       strconv.FormatInt(res.OrderID, 10),
		Status:   string(res.Status),
		AvgPrice: averagePrice(res.CummulativeQuoteQuantity, res.ExecutedQuantity),
		Price:    parseFloat(res.Price),
		Raw:      raw,
	}
	b.log.Info().Str("sym", symbol).Str("side", string(side)).Str("order_id", order.ID).Float64("px", order.AvgPrice).Msg("binance order placed")
	return order, nil
}

// averagePrice divides the quote amount spent by the executed base quantity.
func averagePrice(quote, executed string) float64 {
	q, err := decimal.NewFromString(quote)
	if err != nil {
		return 0
	}
	e, err := decimal.NewFromString(executed)
	if err != nil || e.IsZero() {
		return 0
	}
	return q.Div(e).InexactFloat64()
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
