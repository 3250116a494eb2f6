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
	bitgetBaseURL    = "https://api.bitget.com"
	bitgetPlaceOrder = "/api/v2/spot/trade/place-order"
	bitgetSuccess    = "00000"
)

// Bitget places spot market orders through the V2 REST API.
type Bitget struct {
	http   *resty.Client
	signer *signer
	now    func() time.Time
	log    zerolog.Logger
}

type bitgetOrderRequest struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderType string `json:"orderType"`
	Force     string `json:"force"`
	Size      string `json:"size"`
}

type bitgetOrderResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		OrderID   string `json:"orderId"`
		ClientOid string `json:"clientOid"`
	} `json:"data"`
}

// NewBitget builds the adapter. Bitget requires key, secret and passphrase; any missing leaves it disconnected.
func NewBitget(creds config.Credentials, testnet bool, log zerolog.Logger, opts ...Option) *Bitget {
	o := applyOptions(opts)
	base := bitgetBaseURL
	if o.baseURL != "" {
		base = o.baseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(o.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("locale", "en-US")
	if testnet {
		client.SetHeader("paptrading", "1")
	}
	return &Bitget{
		http:   client,
		signer: newSigner(creds.APIKey, creds.APISecret, creds.APIPassphrase),
		now:    o.now,
		log:    log.With().Str("exchange", string(VenueBitget)).Logger(),
	}
}

func (b *Bitget) Name() string      { return string(VenueBitget) }
func (b *Bitget) IsConnected() bool { return b.signer.complete() }

// PlaceMarketOrder submits a market order. Bitget sizes market buys in quote currency, so a buy
// sends qty*price of the quote asset.
func (b *Bitget) PlaceMarketOrder(ctx context.Context, intent execution.Intent) (execution.BrokerOrder, error) {
	if !b.IsConnected() {
		return execution.BrokerOrder{}, execution.ErrGatewayUnavailable
	}
	size := decimal.NewFromFloat(intent.Qty)
	if intent.Side == execution.Buy {
		if intent.Price <= 0 {
			return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: "market buy needs a reference price"}
		}
		size = size.Mul(decimal.NewFromFloat(intent.Price)).Round(8)
	}
	body, err := json.Marshal(bitgetOrderRequest{
		Symbol:    VenueSymbol(intent.Ticker, ""),
		Side:      string(intent.Side),
		OrderType: "market",
		Force:     "gtc",
		Size:      size.String(),
	})
	if err != nil {
		return execution.BrokerOrder{}, fmt.Errorf("encode bitget order: %w", err)
	}

	ts := strconv.FormatInt(b.now().UnixMilli(), 10)
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"ACCESS-KEY":        b.signer.key,
			"ACCESS-SIGN":       b.signer.sign(ts, "POST", bitgetPlaceOrder, string(body)),
			"ACCESS-TIMESTAMP":  ts,
			"ACCESS-PASSPHRASE": b.signer.passphrase,
		}).
		SetBody(body).
		Post(bitgetPlaceOrder)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Err: err}
	}

	var out bitgetOrderResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: fmt.Sprintf("HTTP %d", resp.StatusCode()), Err: err}
	}
	if out.Code != bitgetSuccess {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: b.Name(), Reason: fmt.Sprintf("%s (code %s)", out.Msg, out.Code)}
	}

	b.log.Info().Str("ticker", intent.Ticker).Str("side", string(intent.Side)).Str("order_id", out.Data.OrderID).Msg("bitget order placed")
	return execution.BrokerOrder{ID: out.Data.OrderID, Status: "submitted", Raw: resp.Body()}, nil
}
