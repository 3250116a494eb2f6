package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

const (
	bybitBaseURL    = "https://api.bybit.com"
	bybitTestnetURL = "https://api-testnet.bybit.com"
	bybitPlaceOrder = "/v5/order/create"
	bybitRecvWindow = "5000"
)

// Bybit places spot market orders through the V5 unified REST API.
type Bybit struct {
	http   *resty.Client
	signer *signer
	now    func() time.Time
	log    zerolog.Logger
}

type bybitOrderRequest struct {
	Category   string `json:"category"`
	Symbol     string `json:"symbol"`
	Side       string `json:"side"`
	OrderType  string `json:"orderType"`
	Qty        string `json:"qty"`
	MarketUnit string `json:"marketUnit"`
}

type bybitOrderResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	} `json:"result"`
}

// NewBybit builds the adapter. Bybit needs only key and secret; testnet switches host.
func NewBybit(creds config.Credentials, testnet bool, log zerolog.Logger, opts ...Option) *Bybit {
	o := applyOptions(opts)
	base := bybitBaseURL
	if testnet {
		base = bybitTestnetURL
	}
	if o.baseURL != "" {
		base = o.baseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(o.timeout).
		SetHeader("Content-Type", "application/json")
	return &Bybit{
		http:   client,
		signer: newSigner(creds.APIKey, creds.APISecret, ""),
		now:    o.now,
		log:    log.With().Str("exchange", string(VenueBybit)).Logger(),
	}
}

func (b *Bybit) Name() string      { return string(VenueBybit) }
func (b *Bybit) IsConnected() bool { return b.signer.key != "" && len(b.signer.secret) > 0 }

// PlaceMarketOrder submits a spot market order sized in the base coin for both sides.
func (b *Bybit) PlaceMarketOrder(ctx context.Context, intent execution.Intent) (execution.BrokerOrder, error) {
	if !b.IsConnected() {
		return execution.BrokerOrder{}, execution.ErrGatewayUnavailable
	}
	side := "Buy"
	if intent.Side == execution.Sell {
		side = "Sell"
	}
	body, err := json.Marshal(bybitOrderRequest{
		Category:   "spot",
		Symbol:     VenueSymbol(intent.Ticker, ""),
		Side:       side,
		OrderType:  "Market",
		Qty:        decimal.NewFromFloat(intent.Qty).String(),
		MarketUnit: "baseCoin",
	})
	if err != nil {
		return execution.BrokerOrder{}, fmt.Errorf("encode bybit order: %w", err)
	}

	ts := strconv.FormatInt(b.now().UnixMilli(), 10)
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"X-BAPI-API-KEY":     b.signer.key,
			"X-BAPI-TIMESTAMP":   ts,
			"X-BAPI-RECV-WINDOW": bybitRecvWindow,
			"X-BAPI-SIGN":        b.signer.signHex(ts + b.signer.key + bybitRecvWindow + string(body)),
		}).
		SetBody(body).
		Post(bybitPlaceOrder)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Err: err}
	}

	var out bybitOrderResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: fmt.Sprintf("HTTP %d", resp.StatusCode()), Err: err}
	}
	if out.RetCode != 0 || out.Result.OrderID == "" {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: fmt.Sprintf("%s (code %d)", out.RetMsg, out.RetCode)}
	}

	id := out.Result.OrderID
	b.log.Info().Str("ticker", intent.Ticker).Str("side", string(intent.Side)).Str("order_id", id).Msg("bybit order placed")
	return execution.BrokerOrder{ID: id, Status: "submitted", Raw: resp.Body()}, nil
}
