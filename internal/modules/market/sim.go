package market

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// SimFeed generates quotes from a seeded random walk around each symbol's
// base price. The same seed always yields the same price sequence, which
// keeps development and tests reproducible.
type SimFeed struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64
	log    zerolog.Logger
}

func NewSimFeed(seed int64, logger zerolog.Logger) *SimFeed {
	return &SimFeed{
		rng:    rand.New(rand.NewSource(seed)),
		prices: make(map[string]float64),
		log:    logger.With().Str("component", "sim_feed").Logger(),
	}
}

// FetchQuotes never fails; symbols are walked in the given order so the
// sequence stays deterministic for a fixed call pattern.
func (f *SimFeed) FetchQuotes(_ context.Context, symbols []string) (map[string]domain.Quote, error) {
	symbols = universeOr(symbols)
	now := time.Now()

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]domain.Quote, len(symbols))
	for _, sym := range symbols {
		info := lookup(sym)
		prev, ok := f.prices[sym]
		if !ok {
			prev = info.base
		}

		// walk within ±1% per tick
		price := domain.Round(prev*(1+(f.rng.Float64()-0.5)*0.02), 2)
		if price <= 0 {
			price = 0.01
		}
		f.prices[sym] = price

		change := domain.Round(price-info.base, 2)
		changePct := 0.0
		if info.base > 0 {
			changePct = domain.Round(change/info.base*100, 2)
		}

		out[sym] = domain.Quote{
			Symbol:        sym,
			Name:          info.name,
			Price:         price,
			Change:        change,
			ChangePercent: changePct,
			Volume:        1_000_000 + f.rng.Int63n(9_000_000),
			Region:        info.region,
			Timestamp:     now,
		}
	}
	return out, nil
}
