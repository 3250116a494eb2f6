package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

const (
	okxBaseURL    = "https://www.okx.com"
	okxPlaceOrder = "/api/v5/trade/order"
	okxTimeFormat = "2006-01-02T15:04:05.000Z"
)

// OKX places spot market orders through the V5 REST API.
type OKX struct {
	http   *resty.Client
	signer *signer
	now    func() time.Time
	log    zerolog.Logger
}

type okxOrderRequest struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
	TgtCcy  string `json:"tgtCcy"`
}

type okxOrderResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		OrdID string `json:"ordId"`
		SCode string `json:"sCode"`
		SMsg  string `json:"sMsg"`
	} `json:"data"`
}

// NewOKX builds the adapter. OKX requires key, secret and passphrase; any missing leaves it disconnected.
func NewOKX(creds config.Credentials, testnet bool, log zerolog.Logger, opts ...Option) *OKX {
	o := applyOptions(opts)
	base := okxBaseURL
	if o.baseURL != "" {
		base = o.baseURL
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(o.timeout).
		SetHeader("Content-Type", "application/json")
	if testnet {
		client.SetHeader("x-simulated-trading", "1")
	}
	return &OKX{
		http:   client,
		signer: newSigner(creds.APIKey, creds.APISecret, creds.APIPassphrase),
		now:    o.now,
		log:    log.With().Str("exchange", string(VenueOKX)).Logger(),
	}
}

func (x *OKX) Name() string      { return string(VenueOKX) }
func (x *OKX) IsConnected() bool { return x.signer.complete() }

// PlaceMarketOrder submits a cash market order sized in the base currency for both sides.
func (x *OKX) PlaceMarketOrder(ctx context.Context, intent execution.Intent) (execution.BrokerOrder, error) {
	if !x.IsConnected() {
		return execution.BrokerOrder{}, execution.ErrGatewayUnavailable
	}
	body, err := json.Marshal(okxOrderRequest{
		InstID:  VenueSymbol(intent.Ticker, "-"),
		TdMode:  "cash",
		Side:    string(intent.Side),
		OrdType: "market",
		Sz:      decimal.NewFromFloat(intent.Qty).String(),
		TgtCcy:  "base_ccy",
	})
	if err != nil {
		return execution.BrokerOrder{}, fmt.Errorf("encode okx order: %w", err)
	}

	ts := x.now().UTC().Format(okxTimeFormat)
	resp, err := x.http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"OK-ACCESS-KEY":        x.signer.key,
			"OK-ACCESS-SIGN":       x.signer.sign(ts, "POST", okxPlaceOrder, string(body)),
			"OK-ACCESS-TIMESTAMP":  ts,
			"OK-ACCESS-PASSPHRASE": x.signer.passphrase,
		}).
		SetBody(body).
		Post(okxPlaceOrder)
	if err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: x.Name(), Err: err}
	}

	var out okxOrderResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: x.Name(), Reason: fmt.Sprintf("HTTP %d", resp.StatusCode()), Err: err}
	}
	if out.Code != "0" || len(out.Data) == 0 {
		reason := out.Msg
		if len(out.Data) > 0 && out.Data[0].SMsg != "" {
			reason = out.Data[0].SMsg
		}
		return execution.BrokerOrder{}, &execution.BrokerError{Exchange: x.Name(), Reason: fmt.Sprintf("%s (code %s)", reason, out.Code)}
	}

	id := out.Data[0].OrdID
	x.log.Info().Str("ticker", intent.Ticker).Str("side", string(intent.Side)).Str("order_id", id).Msg("okx order placed")
	return execution.BrokerOrder{ID: id, Status: "submitted", Raw: resp.Body()}, nil
}
