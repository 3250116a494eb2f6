// Binary order pushes a single alert through the same pipeline the webhook server uses.
//
//	go run ./cmd/order --action buy --ticker BINANCE:BTCUSDT --price 50000 --qty 0.01
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"webhook-trader-go/internal/app"
	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/signal"
	"webhook-trader-go/internal/util"
)

var errOrderFailed = errors.New("order failed")

type orderFlags struct {
	config   string
	strategy string
	action   string
	ticker   string
	price    float64
	qty      float64
	timeout  time.Duration
}

func main() {
	var f orderFlags
	cmd := &cobra.Command{
		Use:           "order",
		Short:         "Execute one buy/sell alert and print the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVarP(&f.config, "config", "c", "config.yaml", "YAML config file (missing file means defaults)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "manual", "strategy name recorded on the signal")
	cmd.Flags().StringVar(&f.action, "action", "", "buy or sell")
	cmd.Flags().StringVar(&f.ticker, "ticker", "", "ticker, e.g. BTCUSDT or BINANCE:BTCUSDT")
	cmd.Flags().Float64Var(&f.price, "price", 0, "reference price")
	cmd.Flags().Float64Var(&f.qty, "qty", 0, "base quantity (0 uses default_qty)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 15*time.Second, "overall deadline for the order")
	_ = cmd.MarkFlagRequired("action")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("price")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "order: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f orderFlags) error {
	cfg, err := config.LoadOrDefault(f.config)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := util.NewLogger(cfg.App.LogLevel, "console")

	a, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := a.Pipeline.Process(ctx, signal.Alert{
		Strategy: f.strategy,
		Action:   f.action,
		Ticker:   f.ticker,
		Price:    f.price,
		Qty:      f.qty,
	}, "cli")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if resp.Status == signal.StatusFailed {
		return fmt.Errorf("%w: %s", errOrderFailed, a.History.Recent(1)[0].Error)
	}
	if a.Paper != nil {
		return enc.Encode(map[string]any{"balances": a.Paper.Balances()})
	}
	return nil
}
