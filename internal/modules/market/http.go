package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// HTTPFeed polls a quote endpoint. The endpoint is expected to answer
// GET <base>?symbols=A,B,C with a JSON array of quotes. On any failure the
// last successfully fetched quotes are returned so a flaky upstream degrades
// to stale prices instead of none.
type HTTPFeed struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu   sync.RWMutex
	last map[string]domain.Quote
}

func NewHTTPFeed(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPFeed {
	return &HTTPFeed{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		last:    make(map[string]domain.Quote),
		log:     logger.With().Str("component", "http_feed").Logger(),
	}
}

func (f *HTTPFeed) FetchQuotes(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	symbols = universeOr(symbols)
	quotes, err := f.fetch(ctx, symbols)
	if err != nil {
		f.log.Warn().Err(err).Msg("quote fetch failed, serving last known quotes")
		return f.lastKnown(symbols), nil
	}

	f.mu.Lock()
	for sym, q := range quotes {
		f.last[sym] = q
	}
	f.mu.Unlock()
	return quotes, nil
}

func (f *HTTPFeed) fetch(ctx context.Context, symbols []string) (map[string]domain.Quote, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed url: %w", err)
	}
	q := u.Query()
	q.Set("symbols", strings.Join(symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building quote request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote endpoint returned %d", resp.StatusCode)
	}

	var list []domain.Quote
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding quotes: %w", err)
	}

	out := make(map[string]domain.Quote, len(list))
	for _, quote := range list {
		if quote.Timestamp.IsZero() {
			quote.Timestamp = time.Now()
		}
		out[quote.Symbol] = quote
	}
	return out, nil
}

func (f *HTTPFeed) lastKnown(symbols []string) map[string]domain.Quote {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]domain.Quote)
	for _, sym := range symbols {
		if q, ok := f.last[sym]; ok {
			out[sym] = q
		}
	}
	return out
}
