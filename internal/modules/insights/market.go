package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mhalkiad/compass/internal/domain"
)

// Confidence scores are fixed per analysis kind; the heuristics do not
// estimate their own uncertainty.
const (
	confidenceDaily      = 0.85
	confidenceRisk       = 0.78
	confidenceVolatility = 0.72
	confidenceRebalance  = 0.75
)

// concentrationLimit is the allocation share above which a single position
// triggers a rebalancing suggestion.
const concentrationLimit = 40.0

// bigMoveThreshold is the daily change, in percent, past which a symbol
// counts toward the volatility forecast.
const bigMoveThreshold = 5.0

// MarketInputs is the market-side state the analysis reads.
type MarketInputs struct {
	Quotes   map[string]domain.Quote
	Holdings []domain.Holding
}

// GenerateMarket derives the market insight set from the latest quotes and
// the revalued portfolio. With no quotes at all it returns nothing; stale
// analysis is worse than none.
func GenerateMarket(in MarketInputs, now time.Time) []domain.Insight {
	if len(in.Quotes) == 0 {
		return nil
	}

	changes := make([]float64, 0, len(in.Quotes))
	symbols := make([]string, 0, len(in.Quotes))
	for sym := range in.Quotes {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var gainers, losers, bigMovers int
	for _, sym := range symbols {
		q := in.Quotes[sym]
		changes = append(changes, q.ChangePercent)
		switch {
		case q.ChangePercent > 0:
			gainers++
		case q.ChangePercent < 0:
			losers++
		}
		if q.ChangePercent > bigMoveThreshold || q.ChangePercent < -bigMoveThreshold {
			bigMovers++
		}
	}

	mean := stat.Mean(changes, nil)
	sigma := 0.0
	if len(changes) > 1 {
		sigma = stat.StdDev(changes, nil)
	}

	out := []domain.Insight{
		dailySummary(mean, gainers, losers, len(changes), now),
		riskAnalysis(in.Holdings, sigma, now),
		volatilityForecast(bigMovers, sigma, now),
	}
	if ins, ok := rebalancing(in.Holdings, now); ok {
		out = append(out, ins)
	}
	return out
}

func dailySummary(mean float64, gainers, losers, total int, now time.Time) domain.Insight {
	tone := "flat"
	switch {
	case mean > 0.5:
		tone = "broadly positive"
	case mean < -0.5:
		tone = "broadly negative"
	}
	return domain.Insight{
		ID:    "market_daily",
		Type:  domain.InsightDailySummary,
		Title: "Daily market summary",
		Content: fmt.Sprintf("Tracked markets are %s today: average move %.2f%% across %d symbols (%d up, %d down).",
			tone, mean, total, gainers, losers),
		Confidence: confidenceDaily,
		Timestamp:  now,
	}
}

func riskAnalysis(holdings []domain.Holding, sigma float64, now time.Time) domain.Insight {
	// aggregate day change relative to the portfolio's value before the move
	var dayChange, totalValue float64
	var top domain.Holding
	for _, h := range holdings {
		dayChange += h.DayChange
		totalValue += h.TotalValue
		if h.Allocation > top.Allocation {
			top = h
		}
	}
	dayChangePct := 0.0
	if prev := totalValue - dayChange; prev > 0 {
		dayChangePct = domain.Round(dayChange/prev*100, 2)
	}

	direction := "flat"
	switch {
	case dayChangePct > 0:
		direction = "up"
	case dayChangePct < 0:
		direction = "down"
	}
	content := fmt.Sprintf("Portfolio is %s %.2f%% today (%+.2f). Cross-market dispersion is %.2f%%.",
		direction, math.Abs(dayChangePct), dayChange, sigma)
	if top.Symbol != "" {
		content = fmt.Sprintf("%s %s is the largest position at %.1f%% of the portfolio.", content, top.Symbol, top.Allocation)
	}
	return domain.Insight{
		ID:         "market_risk",
		Type:       domain.InsightRiskAnalysis,
		Title:      "Portfolio risk analysis",
		Content:    content,
		Confidence: confidenceRisk,
		Timestamp:  now,
	}
}

func volatilityForecast(bigMovers int, sigma float64, now time.Time) domain.Insight {
	level := "low"
	switch {
	case bigMovers >= 3:
		level = "high"
	case bigMovers >= 1:
		level = "moderate"
	}
	return domain.Insight{
		ID:    "market_volatility",
		Type:  domain.InsightVolatilityForecast,
		Title: "Volatility outlook",
		Content: fmt.Sprintf("Short-term volatility looks %s: %d symbols moved more than %.0f%% today, dispersion %.2f%% around the mean.",
			level, bigMovers, bigMoveThreshold, sigma),
		Confidence: confidenceVolatility,
		Timestamp:  now,
	}
}

func rebalancing(holdings []domain.Holding, now time.Time) (domain.Insight, bool) {
	for _, h := range holdings {
		if h.Allocation > concentrationLimit {
			return domain.Insight{
				ID:    "market_rebalance",
				Type:  domain.InsightRebalancingSuggestion,
				Title: "Rebalancing suggestion",
				Content: fmt.Sprintf("%s makes up %.1f%% of the portfolio, above the %.0f%% concentration guideline. Trimming it would reduce single-name risk.",
					h.Symbol, h.Allocation, concentrationLimit),
				Confidence: confidenceRebalance,
				Timestamp:  now,
			}, true
		}
	}
	return domain.Insight{}, false
}
