package market

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/mhalkiad/compass/internal/domain"
)

// WSFeed consumes a push stream of quote messages over a websocket and keeps
// the latest quote per symbol in memory. FetchQuotes serves from that cache,
// so reconciliation passes never block on the network.
type WSFeed struct {
	url string
	log zerolog.Logger

	mu     sync.RWMutex
	quotes map[string]domain.Quote

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWSFeed(url string, logger zerolog.Logger) *WSFeed {
	return &WSFeed{
		url:    url,
		quotes: make(map[string]domain.Quote),
		log:    logger.With().Str("component", "ws_feed").Logger(),
	}
}

// Start opens the stream and keeps reading until Stop is called. Connection
// drops reconnect with backoff.
func (f *WSFeed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)
		backoff := time.Second
		for {
			connected, err := f.consume(ctx)
			if err != nil && ctx.Err() == nil {
				f.log.Warn().Err(err).Dur("retry_in", backoff).Msg("quote stream dropped")
			}
			if connected {
				// the dial worked; a later drop starts backing off fresh
				backoff = time.Second
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()
}

// Stop closes the stream and waits for the reader goroutine to exit.
func (f *WSFeed) Stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

func (f *WSFeed) consume(ctx context.Context) (bool, error) {
	conn, _, err := websocket.Dial(ctx, f.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")

	f.log.Info().Str("url", f.url).Msg("quote stream connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return true, err
		}
		var q domain.Quote
		if err := json.Unmarshal(data, &q); err != nil {
			f.log.Warn().Err(err).Msg("dropping malformed quote message")
			continue
		}
		if q.Symbol == "" {
			continue
		}
		if q.Timestamp.IsZero() {
			q.Timestamp = time.Now()
		}
		f.mu.Lock()
		f.quotes[q.Symbol] = q
		f.mu.Unlock()
	}
}

// FetchQuotes returns the cached quotes for the requested symbols. Symbols
// the stream has not delivered yet are simply absent.
func (f *WSFeed) FetchQuotes(_ context.Context, symbols []string) (map[string]domain.Quote, error) {
	symbols = universeOr(symbols)
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]domain.Quote)
	for _, sym := range symbols {
		if q, ok := f.quotes[sym]; ok {
			out[sym] = q
		}
	}
	return out, nil
}
