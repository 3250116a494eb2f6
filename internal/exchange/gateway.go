package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/dex/solana"
	"webhook-trader-go/internal/execution"
)

// Venue names one of the supported live gateways.
type Venue string

const (
	VenueBinance Venue = "binance"
	VenueBitget  Venue = "bitget"
	VenueOKX     Venue = "okx"
	VenueBybit   Venue = "bybit"
	VenueJupiter Venue = "jupiter"
)

const defaultHTTPTimeout = 10 * time.Second

// ParseVenue accepts a case-insensitive venue name.
func ParseVenue(raw string) (Venue, error) {
	switch v := Venue(strings.ToLower(strings.TrimSpace(raw))); v {
	case VenueBinance, VenueBitget, VenueOKX, VenueBybit, VenueJupiter:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported exchange %q", raw)
	}
}

// Option configures gateway construction parameters.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

// WithBaseURL points a REST gateway at a different host (testnets, fakes).
func WithBaseURL(u string) Option {
	return func(o *gatewayOptions) {
		if u != "" {
			o.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *gatewayOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock overrides time.Now for request signing.
func WithClock(fn func() time.Time) Option {
	return func(o *gatewayOptions) {
		if fn != nil {
			o.now = fn
		}
	}
}

func applyOptions(opts []Option) gatewayOptions {
	o := gatewayOptions{timeout: defaultHTTPTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewGateway builds the live gateway selected by trading.exchange. Missing credentials yield a
// disconnected gateway rather than an error so the service can still start in live mode.
func NewGateway(cfg *config.Config, log zerolog.Logger, opts ...Option) (execution.Gateway, error) {
	venue, err := ParseVenue(cfg.Trading.Exchange)
	if err != nil {
		return nil, err
	}
	creds := cfg.Credentials
	testnet := cfg.Trading.Testnet

	var gw execution.Gateway
	switch venue {
	case VenueBinance:
		gw = NewBinance(creds, testnet, log, opts...)
	case VenueBitget:
		gw = NewBitget(creds, testnet, log, opts...)
	case VenueOKX:
		gw = NewOKX(creds, testnet, log, opts...)
	case VenueBybit:
		gw = NewBybit(creds, testnet, log, opts...)
	case VenueJupiter:
		gw = solana.NewGateway(cfg.Dex, cfg.Wallet, log)
	}
	if !gw.IsConnected() {
		log.Warn().Str("exchange", gw.Name()).Msg("exchange credentials missing or invalid, live orders will fail")
	}
	return gw, nil
}
