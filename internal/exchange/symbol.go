package exchange

import "strings"

// knownQuotes is ordered by priority: USDT must win over USD, and stablecoins over BTC/ETH.
var knownQuotes = []string{"USDT", "USDC", "BUSD", "USD", "BTC", "ETH"}

// Normalize maps TradingView style symbols ("BINANCE:BTCUSDT", "ETHUSDT.P", "btc/usdt")
// to the canonical BASE/QUOTE form. Unrecognised symbols are returned upper-cased.
func Normalize(raw string) string {
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		raw = raw[i+1:]
	}
	if strings.HasSuffix(strings.ToUpper(raw), ".P") {
		raw = raw[:len(raw)-2]
	}

	upper := strings.ToUpper(raw)
	if strings.Contains(upper, "/") {
		return upper
	}
	for _, quote := range knownQuotes {
		if strings.HasSuffix(upper, quote) {
			return upper[:len(upper)-len(quote)] + "/" + quote
		}
	}
	return upper
}

// SplitPair splits a normalized BASE/QUOTE ticker.
func SplitPair(ticker string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(ticker, "/")
	if !ok || base == "" || quote == "" || strings.Contains(quote, "/") {
		return "", "", false
	}
	return base, quote, true
}

// VenueSymbol rewrites BASE/QUOTE with the separator a venue expects ("" for BTCUSDT, "-" for BTC-USDT).
func VenueSymbol(ticker, sep string) string {
	return strings.ReplaceAll(ticker, "/", sep)
}
