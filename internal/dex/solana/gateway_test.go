package solana

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func testDex(rpcURL, jupURL string) config.Dex {
	return config.Dex{
		RpcURL:      rpcURL,
		JupiterBase: jupURL,
		Commitment:  "confirmed",
		SlippageBps: 50,
		Tokens: map[string]config.Token{
			"SOL":  {Mint: solMint, Decimals: 9},
			"usdc": {Mint: usdcMint, Decimals: 6},
		},
	}
}

func TestGatewayDisconnectedWithoutWallet(t *testing.T) {
	gw := NewGateway(testDex("https://rpc", "https://jup"), config.Wallet{}, zerolog.Nop())
	if gw.IsConnected() || gw.Name() != "jupiter" {
		t.Fatalf("expected disconnected jupiter gateway")
	}
	_, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Buy, Ticker: "SOL/USDC", Qty: 1, Price: 150})
	if !errors.Is(err, execution.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestGatewayBuySwap(t *testing.T) {
	wallet := solana.NewWallet()
	want := solana.Signature{9, 9, 9}
	rpcServer := newRPCServer(t, want)
	defer rpcServer.Close()
	// 75 USDC in for 0.5 SOL out
	jup := newJupiterServer(t, wallet.PrivateKey, Quote{InAmount: "75000000", OutAmount: "500000000"})
	defer jup.Close()

	gw := NewGateway(testDex(rpcServer.URL, jup.URL), config.Wallet{PrivateKeyBase58: wallet.PrivateKey.String()}, zerolog.Nop())
	order, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Buy, Ticker: "SOL/USDC", Qty: 0.5, Price: 149})
	if err != nil {
		t.Fatalf("PlaceMarketOrder returned error: %v", err)
	}
	if order.ID != want.String() || order.Status != "submitted" {
		t.Fatalf("unexpected order %+v", order)
	}
	if math.Abs(order.AvgPrice-150) > 1e-9 {
		t.Fatalf("expected avg price 150, got %v", order.AvgPrice)
	}
	var quoted Quote
	if err := json.Unmarshal(order.Raw, &quoted); err != nil || quoted.InputMint != usdcMint || quoted.SwapMode != SwapModeExactOut {
		t.Fatalf("unexpected quote %+v (%v)", quoted, err)
	}
}

func TestGatewayUnknownMint(t *testing.T) {
	wallet := solana.NewWallet()
	gw := NewGateway(testDex("https://rpc", "https://jup"), config.Wallet{PrivateKeyBase58: wallet.PrivateKey.String()}, zerolog.Nop())
	_, err := gw.PlaceMarketOrder(context.Background(), execution.Intent{Side: execution.Sell, Ticker: "BONK/USDC", Qty: 1, Price: 1})
	var brokerErr *execution.BrokerError
	if !errors.As(err, &brokerErr) || brokerErr.Reason != "no mint configured for BONK" {
		t.Fatalf("expected BrokerError for unknown mint, got %v", err)
	}
}

func TestToUnits(t *testing.T) {
	cases := map[float64]uint64{
		0.5:       500000000,
		1:         1000000000,
		0.0000001: 100,
	}
	for qty, want := range cases {
		got, err := toUnits(qty, 9)
		if err != nil || got != want {
			t.Fatalf("toUnits(%v) = %d, %v; want %d", qty, got, err, want)
		}
	}
	if _, err := toUnits(0.0000000001, 9); err == nil {
		t.Fatalf("expected dust quantity to be rejected")
	}
}

func TestQuotedPrice(t *testing.T) {
	if got := quotedPrice("2000000000", 9, "300000000", 6); got != 150 {
		t.Fatalf("expected 150, got %v", got)
	}
	if got := quotedPrice("0", 9, "1", 6); got != 0 {
		t.Fatalf("expected 0 for empty base, got %v", got)
	}
}
