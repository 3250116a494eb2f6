package config

import (
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv overlays secrets and deployment knobs from the environment. A .env file in the
// working directory is loaded first on a best-effort basis; real environment variables win.
func (c *Config) ApplyEnv(files ...string) {
	_ = godotenv.Load(files...) // best-effort

	if v, ok := lookup("PAPER_TRADING"); ok {
		if parseBool(v, true) {
			c.Trading.Mode = "paper"
		} else {
			c.Trading.Mode = "live"
		}
	}
	if v, ok := lookup("TRADING_MODE"); ok {
		c.Trading.Mode = strings.ToLower(v)
	}
	if v, ok := lookup("EXCHANGE"); ok {
		c.Trading.Exchange = strings.ToLower(v)
	}
	if v, ok := lookup("EXCHANGE_TESTNET"); ok {
		c.Trading.Testnet = parseBool(v, c.Trading.Testnet)
	}
	setString(&c.Credentials.APIKey, "API_KEY")
	setString(&c.Credentials.APISecret, "API_SECRET")
	setString(&c.Credentials.APIPassphrase, "API_PASSPHRASE")
	setString(&c.Server.WebhookSecret, "WEBHOOK_SECRET")
	setString(&c.Wallet.PrivateKeyBase58, "SOLANA_PRIVATE_KEY_BASE58")
	setString(&c.Dex.RpcURL, "SOLANA_RPC_URL")
	setString(&c.Dex.JupiterBase, "JUPITER_BASE_URL")
	setString(&c.App.LogLevel, "LOG_LEVEL")
	setString(&c.App.MetricsAddr, "METRICS_ADDR")

	host, port, err := net.SplitHostPort(c.Server.Addr)
	if err != nil {
		host, port = "0.0.0.0", "8000"
	}
	setString(&host, "HOST")
	setString(&port, "PORT")
	c.Server.Addr = net.JoinHostPort(host, port)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(value) {
	case "1", "t", "true", "yes", "y":
		return true
	case "0", "f", "false", "no", "n":
		return false
	default:
		return fallback
	}
}
