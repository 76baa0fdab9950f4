package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/mhalkiad/compass/internal/domain"
)

func TestSimFeedIsDeterministic(t *testing.T) {
	ctx := context.Background()
	symbols := []string{"AAPL", "SPY"}

	a := NewSimFeed(42, zerolog.Nop())
	b := NewSimFeed(42, zerolog.Nop())

	for i := 0; i < 5; i++ {
		qa, err := a.FetchQuotes(ctx, symbols)
		require.NoError(t, err)
		qb, err := b.FetchQuotes(ctx, symbols)
		require.NoError(t, err)

		for _, sym := range symbols {
			assert.Equal(t, qa[sym].Price, qb[sym].Price, "tick %d symbol %s", i, sym)
		}
	}
}

func TestSimFeedWalksNearBase(t *testing.T) {
	f := NewSimFeed(7, zerolog.Nop())

	q, err := f.FetchQuotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)

	aapl := q["AAPL"]
	assert.Equal(t, "Apple Inc.", aapl.Name)
	assert.Equal(t, "US", aapl.Region)
	assert.InDelta(t, 175.25, aapl.Price, 175.25*0.02)
	assert.Positive(t, aapl.Volume)
}

func TestSimFeedUnknownSymbolGetsDefaults(t *testing.T) {
	f := NewSimFeed(1, zerolog.Nop())

	q, err := f.FetchQuotes(context.Background(), []string{"ZZZZ"})
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ", q["ZZZZ"].Name)
	assert.InDelta(t, 100, q["ZZZZ"].Price, 2)
}

func TestSimFeedEmptySymbolsMeansFullUniverse(t *testing.T) {
	f := NewSimFeed(3, zerolog.Nop())

	q, err := f.FetchQuotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, q, len(DefaultUniverse))
	for _, sym := range DefaultUniverse {
		assert.Contains(t, q, sym)
	}
}

func TestHTTPFeedFetchesAndCaches(t *testing.T) {
	var fail bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "AAPL,SPY", r.URL.Query().Get("symbols"))
		json.NewEncoder(w).Encode([]domain.Quote{
			{Symbol: "AAPL", Price: 180.5},
			{Symbol: "SPY", Price: 450.1},
		})
	}))
	defer srv.Close()

	f := NewHTTPFeed(srv.URL, time.Second, zerolog.Nop())
	ctx := context.Background()

	quotes, err := f.FetchQuotes(ctx, []string{"AAPL", "SPY"})
	require.NoError(t, err)
	assert.Equal(t, 180.5, quotes["AAPL"].Price)

	// upstream breaks: last known quotes keep flowing
	fail = true
	quotes, err = f.FetchQuotes(ctx, []string{"AAPL", "SPY"})
	require.NoError(t, err)
	assert.Equal(t, 180.5, quotes["AAPL"].Price)
	assert.Equal(t, 450.1, quotes["SPY"].Price)
}

func TestHTTPFeedNoCacheReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFeed(srv.URL, time.Second, zerolog.Nop())
	quotes, err := f.FetchQuotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestWSFeedConsumeReportsDialOutcome(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// dial never succeeds: backoff must keep growing
	f := NewWSFeed("ws://127.0.0.1:1", zerolog.Nop())
	connected, err := f.consume(ctx)
	assert.False(t, connected)
	assert.Error(t, err)

	// dial succeeds, server drops the connection: backoff resets
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn.Close(websocket.StatusGoingAway, "bye")
	}))
	defer srv.Close()

	f = NewWSFeed("ws"+strings.TrimPrefix(srv.URL, "http"), zerolog.Nop())
	connected, err = f.consume(ctx)
	assert.True(t, connected)
	assert.Error(t, err)
}

func TestWSFeedServesFromCache(t *testing.T) {
	f := NewWSFeed("ws://unused", zerolog.Nop())
	f.quotes["AAPL"] = domain.Quote{Symbol: "AAPL", Price: 190}

	quotes, err := f.FetchQuotes(context.Background(), []string{"AAPL", "SPY"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Equal(t, 190.0, quotes["AAPL"].Price)
}
