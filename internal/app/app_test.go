package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/execution"
	"webhook-trader-go/internal/signal"
)

func TestBuildPaper(t *testing.T) {
	cfg := config.Default()
	a, err := Build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if a.Paper == nil || a.Gateway != nil || a.Engine.Mode() != execution.ModePaper {
		t.Fatalf("expected paper wiring, got %+v", a)
	}

	resp, err := a.Pipeline.Process(context.Background(), signal.Alert{Action: "buy", Ticker: "SOLUSDT", Price: 100}, "")
	if err != nil || resp.Status != signal.StatusFilled {
		t.Fatalf("expected filled order, got %+v (%v)", resp, err)
	}
	// default_qty SOL/USDT is 0.1
	if a.Paper.Balance("SOL") != 0.1 {
		t.Fatalf("expected 0.1 SOL, got %v", a.Paper.Balance("SOL"))
	}
}

func TestBuildLiveWithoutCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Trading.Mode = "live"
	cfg.Trading.Exchange = "bitget"

	a, err := Build(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if a.Paper != nil || a.Gateway == nil || a.Engine.IsConnected() {
		t.Fatalf("expected disconnected live wiring")
	}
	resp, _ := a.Pipeline.Process(context.Background(), signal.Alert{Action: "buy", Ticker: "BTCUSDT", Price: 50000}, "")
	if resp.Status != signal.StatusFailed || a.History.Recent(1)[0].Error != execution.ErrGatewayUnavailable.Error() {
		t.Fatalf("expected gateway unavailable failure, got %+v", a.History.Recent(1)[0])
	}
}

func TestBuildRejectsBadModeAndExchange(t *testing.T) {
	cfg := config.Default()
	cfg.Trading.Mode = "demo"
	_, err := Build(cfg, zerolog.Nop())
	var modeErr *execution.UnknownModeError
	if !errors.As(err, &modeErr) {
		t.Fatalf("expected UnknownModeError, got %v", err)
	}

	cfg = config.Default()
	cfg.Trading.Exchange = "kraken"
	if _, err := Build(cfg, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown exchange in paper mode")
	}
}

func TestLogBanner(t *testing.T) {
	var buf bytes.Buffer
	a, err := Build(config.Default(), zerolog.New(&buf))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	a.LogBanner()
	out := buf.String()
	if !strings.Contains(out, "PAPER TRADING") || !strings.Contains(out, "POST /api/webhook/tv") {
		t.Fatalf("unexpected banner %s", out)
	}
}
