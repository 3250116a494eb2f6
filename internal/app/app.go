// Package app assembles the trading pipeline from configuration.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/exchange"
	"webhook-trader-go/internal/execution"
	"webhook-trader-go/internal/paper"
	"webhook-trader-go/internal/pipeline"
	"webhook-trader-go/internal/risk"
	"webhook-trader-go/internal/server"
	"webhook-trader-go/internal/signal"
)

const historyCapacity = 256

// App holds the long-lived components. Paper is nil in live mode and Gateway is nil in paper mode.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Engine   *execution.Engine
	Paper    *paper.Account
	Gateway  execution.Gateway
	History  *signal.History
	Pipeline *pipeline.Pipeline
}

// Build wires every component for the configured mode. The exchange name is checked even in
// paper mode so a typo does not surface only after switching to live.
func Build(cfg *config.Config, log zerolog.Logger, opts ...exchange.Option) (*App, error) {
	mode, err := execution.ParseMode(cfg.Trading.Mode)
	if err != nil {
		return nil, err
	}
	if _, err := exchange.ParseVenue(cfg.Trading.Exchange); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Log: log, History: signal.NewHistory(historyCapacity)}
	var venue execution.PaperVenue
	switch mode {
	case execution.ModePaper:
		a.Paper = paper.NewAccount(cfg.Paper.StartingBalances,
			paper.WithSlippageBps(cfg.Paper.SlippageBps),
			paper.WithLogger(log),
		)
		venue = a.Paper
	case execution.ModeLive:
		a.Gateway, err = exchange.NewGateway(cfg, log, opts...)
		if err != nil {
			return nil, fmt.Errorf("build gateway: %w", err)
		}
	}

	a.Engine, err = execution.NewEngine(mode, venue, a.Gateway, log)
	if err != nil {
		return nil, err
	}
	limits := risk.Limits{MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade}
	a.Pipeline = pipeline.New(a.Engine, a.History, cfg.DefaultQty, limits, log)
	return a, nil
}

// Handler returns the HTTP surface for this app.
func (a *App) Handler() *server.Handler {
	return server.NewHandler(server.Deps{
		Pipeline: a.Pipeline,
		History:  a.History,
		Engine:   a.Engine,
		Paper:    a.Paper,
		Secret:   a.Config.Server.WebhookSecret,
		Log:      a.Log,
	})
}

// LogBanner prints the startup summary.
func (a *App) LogBanner() {
	mode := "LIVE TRADING"
	if a.Engine.Mode() == execution.ModePaper {
		mode = "PAPER TRADING"
	}
	a.Log.Info().
		Str("mode", mode).
		Str("exchange", a.Config.Trading.Exchange).
		Bool("testnet", a.Config.Trading.Testnet).
		Bool("exchange_connected", a.Engine.IsConnected()).
		Bool("webhook_auth", a.Config.Server.WebhookSecret != "").
		Str("addr", a.Config.Server.Addr).
		Str("endpoint", "POST /api/webhook/tv").
		Str("version", server.Version).
		Msg("WebhookTrader server starting")
}
