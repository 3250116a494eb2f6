// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // json|console
}

// Server configures the webhook HTTP listener.
type Server struct {
	Addr          string `yaml:"addr"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// Trading selects paper or live execution and the live venue.
type Trading struct {
	Mode     string `yaml:"mode"`     // paper|live
	Exchange string `yaml:"exchange"` // binance|bitget|okx|bybit|jupiter
	Testnet  bool   `yaml:"testnet"`
}

// Credentials holds exchange API material. Usually supplied through the environment.
type Credentials struct {
	APIKey        string `yaml:"api_key"`
	APISecret     string `yaml:"api_secret"`
	APIPassphrase string `yaml:"api_passphrase"`
}

// Paper captures paper-trading account settings.
type Paper struct {
	StartingBalances map[string]float64 `yaml:"starting_balances"`
	SlippageBps      float64            `yaml:"slippage_bps"`
}

// Risk encodes guard-rails for how much size a single signal may take on.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App                `yaml:"app"`
	Server      Server             `yaml:"server"`
	Trading     Trading            `yaml:"trading"`
	Credentials Credentials        `yaml:"credentials"`
	DefaultQty  map[string]float64 `yaml:"default_qty"`
	Paper       Paper              `yaml:"paper"`
	Risk        Risk               `yaml:"risk"`
	Dex         Dex                `yaml:"dex"`
	Wallet      Wallet             `yaml:"wallet"`
}

// Default returns the configuration used when no file is present: paper trading on binance.
func Default() *Config {
	return &Config{
		App: App{
			Name:      "webhook-trader",
			Env:       "dev",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server:  Server{Addr: "0.0.0.0:8000"},
		Trading: Trading{Mode: "paper", Exchange: "binance"},
		DefaultQty: map[string]float64{
			"BTC/USDT": 0.001,
			"ETH/USDT": 0.01,
			"SOL/USDT": 0.1,
		},
		Paper: Paper{
			StartingBalances: map[string]float64{"USDT": 10000, "BTC": 0, "ETH": 0, "SOL": 0},
			SlippageBps:      10,
		},
		Dex: Dex{
			Chain:       "solana",
			RpcURL:      "https://api.mainnet-beta.solana.com",
			Commitment:  "confirmed",
			JupiterBase: "https://quote-api.jup.ag",
			SlippageBps: 50,
		},
	}
}

// Load reads a YAML file from disk on top of Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return config, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise only fail at the first signal.
func (c *Config) Validate() error {
	switch c.Trading.Mode {
	case "paper", "live":
	default:
		return fmt.Errorf("trading.mode must be paper or live, got %q", c.Trading.Mode)
	}
	for ticker, qty := range c.DefaultQty {
		if qty <= 0 {
			return fmt.Errorf("default_qty[%s] must be positive", ticker)
		}
	}
	for asset, amount := range c.Paper.StartingBalances {
		if amount < 0 {
			return fmt.Errorf("paper.starting_balances[%s] must not be negative", asset)
		}
	}
	if c.Paper.SlippageBps < 0 {
		return fmt.Errorf("paper.slippage_bps must not be negative")
	}
	if c.Risk.MaxNotionalPerTrade < 0 {
		return fmt.Errorf("risk.max_notional_per_trade must not be negative")
	}
	return nil
}
