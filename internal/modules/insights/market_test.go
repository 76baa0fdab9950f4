package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhalkiad/compass/internal/domain"
)

func TestGenerateMarketEmptyQuotes(t *testing.T) {
	assert.Empty(t, GenerateMarket(MarketInputs{}, now))
}

func TestGenerateMarketBaseSet(t *testing.T) {
	in := MarketInputs{
		Quotes: map[string]domain.Quote{
			"SPY":  {Symbol: "SPY", ChangePercent: 1.2},
			"QQQ":  {Symbol: "QQQ", ChangePercent: 0.8},
			"AAPL": {Symbol: "AAPL", ChangePercent: -0.4},
		},
		Holdings: []domain.Holding{
			{Symbol: "AAPL", Allocation: 30},
			{Symbol: "GOOGL", Allocation: 70},
		},
	}

	out := GenerateMarket(in, now)
	require.Len(t, out, 4) // concentration above the limit adds rebalancing

	byID := map[string]domain.Insight{}
	for _, ins := range out {
		byID[ins.ID] = ins
	}

	assert.Equal(t, 0.85, byID["market_daily"].Confidence)
	assert.Contains(t, byID["market_daily"].Content, "2 up, 1 down")

	assert.Equal(t, 0.78, byID["market_risk"].Confidence)
	assert.Contains(t, byID["market_risk"].Content, "GOOGL")

	assert.Equal(t, 0.72, byID["market_volatility"].Confidence)

	assert.Equal(t, 0.75, byID["market_rebalance"].Confidence)
	assert.Contains(t, byID["market_rebalance"].Content, "GOOGL")
}

func TestGenerateMarketNoRebalanceWhenDiversified(t *testing.T) {
	in := MarketInputs{
		Quotes: map[string]domain.Quote{
			"SPY": {Symbol: "SPY", ChangePercent: 0.1},
			"DIA": {Symbol: "DIA", ChangePercent: -0.1},
		},
		Holdings: []domain.Holding{
			{Symbol: "SPY", Allocation: 35},
			{Symbol: "DIA", Allocation: 35},
			{Symbol: "QQQ", Allocation: 30},
		},
	}

	out := GenerateMarket(in, now)
	require.Len(t, out, 3)
	for _, ins := range out {
		assert.NotEqual(t, "market_rebalance", ins.ID)
	}
}

func TestRiskAnalysisReportsPortfolioDayChange(t *testing.T) {
	in := MarketInputs{
		Quotes: map[string]domain.Quote{
			"AAPL":  {Symbol: "AAPL", ChangePercent: 1.0},
			"GOOGL": {Symbol: "GOOGL", ChangePercent: -0.5},
		},
		// previous value 10000+20000=30000, moved +600 on the day
		Holdings: []domain.Holding{
			{Symbol: "AAPL", TotalValue: 10500, DayChange: 500, Allocation: 34},
			{Symbol: "GOOGL", TotalValue: 20100, DayChange: 100, Allocation: 66},
		},
	}

	out := GenerateMarket(in, now)
	for _, ins := range out {
		if ins.ID == "market_risk" {
			assert.Contains(t, ins.Content, "up 2.00%")
			assert.Contains(t, ins.Content, "+600.00")
			return
		}
	}
	t.Fatal("risk insight missing")
}

func TestVolatilityForecastCountsBigMovers(t *testing.T) {
	in := MarketInputs{
		Quotes: map[string]domain.Quote{
			"TSLA": {Symbol: "TSLA", ChangePercent: 7.2},
			"BABA": {Symbol: "BABA", ChangePercent: -6.1},
			"NVDA": {Symbol: "NVDA", ChangePercent: 5.5},
			"SPY":  {Symbol: "SPY", ChangePercent: 0.3},
		},
	}

	out := GenerateMarket(in, now)
	for _, ins := range out {
		if ins.ID == "market_volatility" {
			assert.Contains(t, ins.Content, "high")
			assert.Contains(t, ins.Content, "3 symbols")
			return
		}
	}
	t.Fatal("volatility insight missing")
}

func TestGenerateMarketDeterministic(t *testing.T) {
	in := MarketInputs{
		Quotes: map[string]domain.Quote{
			"SPY": {Symbol: "SPY", ChangePercent: 0.5},
			"QQQ": {Symbol: "QQQ", ChangePercent: 1.5},
		},
	}
	assert.Equal(t, GenerateMarket(in, now), GenerateMarket(in, now))
}
