package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"webhook-trader-go/internal/app"
	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/exchange"
	"webhook-trader-go/internal/pipeline"
	"webhook-trader-go/internal/signal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func post(t *testing.T, url, body string) pipeline.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var out pipeline.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestPaperFlowProducesOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Paper.StartingBalances = map[string]float64{"USDT": 10000}

	var buf bytes.Buffer
	a, err := app.Build(cfg, zerolog.New(&buf))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp := post(t, srv.URL+"/api/webhook/tv", `{"strategy":"EMA","action":"buy","ticker":"BINANCE:BTCUSDT","price":50000,"qty":0.01}`)
	if resp.Status != signal.StatusFilled || resp.OrderResult == nil {
		t.Fatalf("expected filled order, got %+v", resp)
	}
	if math.Abs(a.Paper.Balance("USDT")-9500) > 1e-6 || a.Paper.Balance("BTC") != 0.01 {
		t.Fatalf("unexpected balances %+v", a.Paper.Balances())
	}

	resp = post(t, srv.URL+"/api/webhook/tv", `{"strategy":"EMA","action":"sell","ticker":"BTCUSDT","price":52000,"qty":0.01}`)
	if resp.Status != signal.StatusFilled {
		t.Fatalf("expected filled sell, got %+v", resp)
	}
	if math.Abs(a.Paper.Balance("USDT")-10020) > 1e-6 || a.Paper.Balance("BTC") != 0 {
		t.Fatalf("unexpected balances after round trip %+v", a.Paper.Balances())
	}
	if !strings.Contains(buf.String(), "paper fill") || a.History.Len() != 2 {
		t.Fatalf("expected two recorded fills, log: %s", buf.String())
	}
}

func TestConcurrentFullBalanceBuys(t *testing.T) {
	cfg := config.Default()
	cfg.Paper.StartingBalances = map[string]float64{"USDT": 500}
	a, err := app.Build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	const n = 16
	var wg sync.WaitGroup
	statuses := make(chan signal.Status, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/api/webhook/tv", "application/json",
				strings.NewReader(`{"strategy":"race","action":"buy","ticker":"BTCUSDT","price":50000,"qty":0.01}`))
			if err != nil {
				t.Errorf("post: %v", err)
				return
			}
			defer resp.Body.Close()
			var out pipeline.Response
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Errorf("decode: %v", err)
				return
			}
			statuses <- out.Status
		}()
	}
	wg.Wait()
	close(statuses)

	filled := 0
	for s := range statuses {
		if s == signal.StatusFilled {
			filled++
		}
	}
	if filled != 1 {
		t.Fatalf("expected exactly one fill, got %d", filled)
	}
	if a.Paper.Balance("USDT") != 0 || a.History.Len() != n {
		t.Fatalf("unexpected end state: usdt=%v history=%d", a.Paper.Balance("USDT"), a.History.Len())
	}

	ids := map[int64]bool{}
	for _, s := range a.History.Recent(0) {
		ids[s.ID] = true
	}
	if len(ids) != n {
		t.Fatalf("expected %d unique signal ids, got %d", n, len(ids))
	}
}

func TestLiveFlowThroughOKX(t *testing.T) {
	okx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("OK-ACCESS-KEY") != "k" {
			t.Errorf("missing credentials header")
		}
		fmt.Fprint(w, `{"code":"0","msg":"","data":[{"ordId":"777","sCode":"0","sMsg":""}]}`)
	}))
	defer okx.Close()

	cfg := config.Default()
	cfg.Trading.Mode = "live"
	cfg.Trading.Exchange = "okx"
	cfg.Credentials = config.Credentials{APIKey: "k", APISecret: "s", APIPassphrase: "p"}
	a, err := app.Build(cfg, zerolog.Nop(), exchange.WithBaseURL(okx.URL))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp := post(t, srv.URL+"/api/webhook/tv", `{"strategy":"EMA","action":"buy","ticker":"OKX:ETHUSDT","price":3000}`)
	if resp.Status != signal.StatusFilled || resp.OrderResult == nil {
		t.Fatalf("expected filled live order, got %+v", resp)
	}
	res := resp.OrderResult
	if res.OrderID != "live_777" || res.LiveDetails == nil || res.Exchange != "okx" {
		t.Fatalf("unexpected live result %+v", res)
	}
	// OKX does not echo a fill price; the reference price is used
	if res.FillPrice != 3000 || res.Qty != 0.01 {
		t.Fatalf("expected fill at 3000 for default qty 0.01, got %+v", res)
	}
}
