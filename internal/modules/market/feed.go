// Package market supplies quotes to the rest of the system. Three feed
// implementations exist: a deterministic simulator, an HTTP poller, and a
// websocket push client. Consumers only see the Feed interface.
package market

import (
	"context"

	"github.com/mhalkiad/compass/internal/domain"
)

// Feed fetches current quotes for a symbol set. Implementations return the
// quotes they have; a missing symbol is not an error. A feed error means the
// caller should keep using its last known quotes.
type Feed interface {
	FetchQuotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error)
}

// DefaultUniverse is the symbol set tracked when the user follows nothing
// yet: major index proxies, large caps, and regional ETFs.
var DefaultUniverse = []string{
	"SPY", "DIA", "QQQ", "VIX",
	"AAPL", "GOOGL", "TSLA", "MSFT",
	"EWU", "EWG", "EWQ", "ASML", "SAP",
	"EWJ", "FXI", "EWY", "TSM", "BABA",
}

// universeOr substitutes the default universe for an empty symbol list.
// An empty request means "everything you track", not "nothing".
func universeOr(symbols []string) []string {
	if len(symbols) == 0 {
		return DefaultUniverse
	}
	return symbols
}

type symbolInfo struct {
	name   string
	region string
	base   float64
}

var symbolCatalog = map[string]symbolInfo{
	"SPY":   {"S&P 500 ETF", "US", 445.20},
	"DIA":   {"Dow Jones ETF", "US", 348.15},
	"QQQ":   {"Nasdaq 100 ETF", "US", 375.80},
	"VIX":   {"Volatility Index", "US", 18.45},
	"AAPL":  {"Apple Inc.", "US", 175.25},
	"GOOGL": {"Alphabet Inc.", "US", 2750.10},
	"TSLA":  {"Tesla Inc.", "US", 245.60},
	"MSFT":  {"Microsoft Corp.", "US", 338.50},
	"EWU":   {"UK ETF", "Europe", 32.45},
	"EWG":   {"Germany ETF", "Europe", 28.90},
	"EWQ":   {"France ETF", "Europe", 35.20},
	"ASML":  {"ASML Holding", "Europe", 612.30},
	"SAP":   {"SAP SE", "Europe", 142.85},
	"EWJ":   {"Japan ETF", "Asia", 58.75},
	"FXI":   {"China Large-Cap ETF", "Asia", 27.40},
	"EWY":   {"South Korea ETF", "Asia", 62.15},
	"TSM":   {"Taiwan Semi", "Asia", 98.50},
	"BABA":  {"Alibaba Group", "Asia", 85.30},
}

func lookup(symbol string) symbolInfo {
	if info, ok := symbolCatalog[symbol]; ok {
		return info
	}
	return symbolInfo{name: symbol, region: "US", base: 100}
}
