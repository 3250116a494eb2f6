// Binary server receives TradingView webhooks and executes them on the paper ledger or a live exchange.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"webhook-trader-go/internal/app"
	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/metrics"
	"webhook-trader-go/internal/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "webhook-trader",
		Short:         "Receive TradingView alerts and trade them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "YAML config file (missing file means defaults)")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "webhook-trader: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := util.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	a, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	metricsSrv := metrics.Serve(cfg.App.MetricsAddr)
	if metricsSrv != nil {
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.LogBanner()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info().Int("signals", a.History.Len()).Msg("server stopped")
	return err
}
