package exchange

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

func TestBinancePlaceMarketOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			t.Errorf("missing api key header")
		}
		if r.FormValue("symbol") != "BTCUSDT" || r.FormValue("side") != "BUY" || r.FormValue("type") != "MARKET" || r.FormValue("quantity") != "0.01" {
			t.Errorf("unexpected order params %v", r.Form)
		}
		if r.FormValue("signature") == "" {
			t.Errorf("request not signed")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":28,"clientOrderId":"abc","transactTime":1507725176595,
			"price":"0.00000000","origQty":"0.01000000","executedQty":"0.01000000","cummulativeQuoteQty":"500.50000000",
			"status":"FILLED","timeInForce":"GTC","type":"MARKET","side":"BUY","fills":[]}`))
	}))
	defer server.Close()

	gw := NewBinance(config.Credentials{APIKey: "key", APISecret: "secret"}, false, zerolog.Nop(), WithBaseURL(server.URL))
	if !gw.IsConnected() {
		t.Fatalf("expected connected gateway")
	}
	order, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Buy, Ticker: "BTC/USDT", Qty: 0.01, Price: 50000})
	if err != nil {
		t.Fatalf("PlaceMarketOrder returned error: %v", err)
	}
	if order.ID != "28" || order.Status != "FILLED" {
		t.Fatalf("unexpected order %+v", order)
	}
	if math.Abs(order.AvgPrice-50050) > 1e-6 {
		t.Fatalf("expected avg price 50050, got %v", order.AvgPrice)
	}
	if len(order.Raw) == 0 {
		t.Fatalf("expected raw response")
	}
}

func TestBinanceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	}))
	defer server.Close()

	gw := NewBinance(config.Credentials{APIKey: "key", APISecret: "secret"}, false, zerolog.Nop(), WithBaseURL(server.URL))
	_, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Sell, Ticker: "ETH/USDT", Qty: 1, Price: 3000})
	var brokerErr *execution.BrokerError
	if !errors.As(err, &brokerErr) {
		t.Fatalf("expected BrokerError, got %v", err)
	}
	if brokerErr.Exchange != "binance" || brokerErr.Reason != "Account has insufficient balance for requested action." {
		t.Fatalf("unexpected broker error %+v", brokerErr)
	}
}

func TestBinanceDisconnected(t *testing.T) {
	gw := NewBinance(config.Credentials{}, false, zerolog.Nop())
	if gw.IsConnected() {
		t.Fatalf("expected disconnected gateway without credentials")
	}
	_, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Buy, Ticker: "BTC/USDT", Qty: 1, Price: 1})
	if !errors.Is(err, execution.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestAveragePrice(t *testing.T) {
	if got := averagePrice("300", "2"); got != 150 {
		t.Fatalf("expected 150, got %v", got)
	}
	if got := averagePrice("300", "0"); got != 0 {
		t.Fatalf("expected 0 for unexecuted order, got %v", got)
	}
}
