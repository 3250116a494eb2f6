package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"webhook-trader-go/internal/config"
	"webhook-trader-go/internal/exchange"
)

const defaultConfigPath = "config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== WebhookTrader Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit trading mode and exchange")
		fmt.Println("3) Edit default quantities")
		fmt.Println("4) Edit paper balances and risk")
		fmt.Println("5) Save config")
		fmt.Println("6) Launch server")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(cfg)
		case "2":
			editTrading(reader, cfg)
		case "3":
			editDefaultQty(reader, cfg)
		case "4":
			editPaper(reader, cfg)
		case "5":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchServer(reader)
		case "7":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("Mode: %s | Exchange: %s | Testnet: %t\n", cfg.Trading.Mode, cfg.Trading.Exchange, cfg.Trading.Testnet)
	fmt.Printf("Listen: %s | Webhook secret set: %t\n", cfg.Server.Addr, cfg.Server.WebhookSecret != "")
	fmt.Printf("API key set: %t\n", cfg.Credentials.APIKey != "")
	fmt.Println("Default quantities:")
	for _, ticker := range sortedKeys(cfg.DefaultQty) {
		fmt.Printf("  %-12s %g\n", ticker, cfg.DefaultQty[ticker])
	}
	fmt.Println("Paper starting balances:")
	for _, asset := range sortedKeys(cfg.Paper.StartingBalances) {
		fmt.Printf("  %-6s %.8g\n", asset, cfg.Paper.StartingBalances[asset])
	}
	fmt.Printf("Paper slippage: %.1f bps\n", cfg.Paper.SlippageBps)
	fmt.Printf("Per-trade notional cap: $%.2f (0 = off)\n", cfg.Risk.MaxNotionalPerTrade)
}

func editTrading(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Trading ---")
	if mode := promptString(reader, "Mode (paper|live)", cfg.Trading.Mode); mode == "paper" || mode == "live" {
		cfg.Trading.Mode = mode
	} else {
		fmt.Println("invalid mode, keeping", cfg.Trading.Mode)
	}
	raw := promptString(reader, "Exchange (binance|bitget|okx|bybit|jupiter)", cfg.Trading.Exchange)
	if venue, err := exchange.ParseVenue(raw); err == nil {
		cfg.Trading.Exchange = string(venue)
	} else {
		fmt.Println(err)
	}
	cfg.Trading.Testnet = promptString(reader, "Testnet (y/n)", yesNo(cfg.Trading.Testnet)) == "y"
}

func editDefaultQty(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Default Quantities ---")
	for _, ticker := range sortedKeys(cfg.DefaultQty) {
		cfg.DefaultQty[ticker] = promptFloat(reader, ticker, cfg.DefaultQty[ticker])
	}
	fmt.Print("Add ticker (blank to finish): ")
	line, _ := reader.ReadString('\n')
	if ticker := exchange.Normalize(strings.TrimSpace(line)); ticker != "" {
		if cfg.DefaultQty == nil {
			cfg.DefaultQty = make(map[string]float64)
		}
		cfg.DefaultQty[ticker] = promptFloat(reader, ticker, 0.001)
	}
}

func editPaper(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Paper Account / Risk ---")
	for _, asset := range sortedKeys(cfg.Paper.StartingBalances) {
		cfg.Paper.StartingBalances[asset] = promptFloat(reader, asset+" balance", cfg.Paper.StartingBalances[asset])
	}
	cfg.Paper.SlippageBps = promptFloat(reader, "Max slippage (bps)", cfg.Paper.SlippageBps)
	cfg.Risk.MaxNotionalPerTrade = promptFloat(reader, "Max notional per trade (USD, 0 = off)", cfg.Risk.MaxNotionalPerTrade)
}

func launchServer(reader *bufio.Reader) {
	fmt.Println("Launching webhook server (Ctrl+C to stop)...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/server", "--config", locateConfig())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		return
	}

	go func() {
		_ = cmd.Wait()
		cancel()
	}()

	fmt.Print("\nPress ENTER to stop the server and return to menu...")
	_, _ = reader.ReadString('\n')
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%g]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil || val < 0 {
		fmt.Printf("invalid number, keeping %g\n", current)
		return current
	}
	return val
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Clean(defaultConfigPath)
}
