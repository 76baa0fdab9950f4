package portfolio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// Service holds holdings and the watchlist in memory, writing through to the
// repository. When storage holds no positions at startup the default
// portfolio is seeded so the dashboard never renders empty.
type Service struct {
	mu        sync.RWMutex
	holdings  map[string]domain.Holding
	watchlist map[string]domain.WatchlistItem

	repo *Repository
	log  zerolog.Logger
}

func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{
		holdings:  make(map[string]domain.Holding),
		watchlist: make(map[string]domain.WatchlistItem),
		repo:      repo,
		log:       logger.With().Str("service", "portfolio").Logger(),
	}
}

// Load populates in-memory state from storage, seeding defaults when the
// holdings table is empty or unreadable.
func (s *Service) Load(ctx context.Context) {
	holdings, err := s.repo.LoadHoldings(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading holdings failed, seeding defaults")
		holdings = nil
	}
	if len(holdings) == 0 {
		holdings = defaultHoldings()
		for _, h := range holdings {
			if err := s.repo.InsertHolding(ctx, h); err != nil {
				s.log.Error().Err(err).Str("symbol", h.Symbol).Msg("persisting default holding failed")
			}
		}
		s.log.Info().Int("count", len(holdings)).Msg("seeded default portfolio")
	}

	watchlist, err := s.repo.LoadWatchlist(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading watchlist failed, starting empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range holdings {
		s.holdings[h.ID] = h
	}
	for _, w := range watchlist {
		s.watchlist[w.ID] = w
	}
}

func defaultHoldings() []domain.Holding {
	now := time.Now()
	return []domain.Holding{
		{
			ID: uuid.NewString(), Symbol: "AAPL", Name: "Apple Inc.",
			Shares: 50, AvgCost: 150, CurrentPrice: 150, LastUpdated: now,
		},
		{
			ID: uuid.NewString(), Symbol: "GOOGL", Name: "Alphabet Inc.",
			Shares: 10, AvgCost: 2650, CurrentPrice: 2650, LastUpdated: now,
		},
	}
}

// AddHolding validates and stores a new position.
func (s *Service) AddHolding(ctx context.Context, h domain.Holding) (domain.Holding, error) {
	if err := validateHolding(h); err != nil {
		return domain.Holding{}, err
	}

	h.ID = uuid.NewString()
	h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	if h.CurrentPrice == 0 {
		h.CurrentPrice = h.AvgCost
	}
	h.LastUpdated = time.Now()

	s.mu.Lock()
	s.holdings[h.ID] = h
	s.mu.Unlock()

	if err := s.repo.InsertHolding(ctx, h); err != nil {
		s.log.Error().Err(err).Str("symbol", h.Symbol).Msg("persisting holding failed")
	}
	return h, nil
}

// UpdateHolding replaces the position's mutable fields.
func (s *Service) UpdateHolding(ctx context.Context, id string, upd domain.Holding) (domain.Holding, error) {
	if err := validateHolding(upd); err != nil {
		return domain.Holding{}, err
	}

	s.mu.Lock()
	cur, ok := s.holdings[id]
	if !ok {
		s.mu.Unlock()
		return domain.Holding{}, &domain.NotFoundError{Entity: "holding", ID: id}
	}
	cur.Symbol = strings.ToUpper(strings.TrimSpace(upd.Symbol))
	cur.Shares = upd.Shares
	cur.AvgCost = upd.AvgCost
	cur.LastUpdated = time.Now()
	s.holdings[id] = cur
	s.mu.Unlock()

	if err := s.repo.UpdateHolding(ctx, cur); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting holding update failed")
	}
	return cur, nil
}

func (s *Service) DeleteHolding(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.holdings[id]; !ok {
		s.mu.Unlock()
		return &domain.NotFoundError{Entity: "holding", ID: id}
	}
	delete(s.holdings, id)
	s.mu.Unlock()

	if err := s.repo.DeleteHolding(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting holding delete failed")
	}
	return nil
}

// Holdings returns positions sorted by symbol.
func (s *Service) Holdings() []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Holding, 0, len(s.holdings))
	for _, h := range s.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the distinct symbols across holdings and watchlist, the
// set the market feed is asked for.
func (s *Service) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, h := range s.holdings {
		seen[h.Symbol] = struct{}{}
	}
	for _, w := range s.watchlist {
		seen[w.Symbol] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Revalue reprices all holdings from the quote map and stores the result.
func (s *Service) Revalue(ctx context.Context, quotes map[string]domain.Quote, now time.Time) {
	s.mu.Lock()
	revalued := Revalue(s.holdingsLocked(), quotes, now)
	for _, h := range revalued {
		s.holdings[h.ID] = h
	}
	s.mu.Unlock()

	for _, h := range revalued {
		if err := s.repo.UpdateHolding(ctx, h); err != nil {
			s.log.Error().Err(err).Str("id", h.ID).Msg("persisting revalued holding failed")
		}
	}
}

func (s *Service) holdingsLocked() []domain.Holding {
	out := make([]domain.Holding, 0, len(s.holdings))
	for _, h := range s.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Value returns total portfolio value, preferring live quotes over stored
// prices.
func (s *Service) Value(quotes map[string]domain.Quote) float64 {
	return TotalValue(s.Holdings(), quotes)
}

// Gains returns total unrealized gains, preferring live quotes.
func (s *Service) Gains(quotes map[string]domain.Quote) float64 {
	return TotalGains(s.Holdings(), quotes)
}

// AddWatchlistItem tracks a new symbol.
func (s *Service) AddWatchlistItem(ctx context.Context, symbol, name string) (domain.WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.WatchlistItem{}, &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}

	s.mu.Lock()
	for _, w := range s.watchlist {
		if w.Symbol == symbol {
			s.mu.Unlock()
			return w, nil
		}
	}
	item := domain.WatchlistItem{
		ID:      uuid.NewString(),
		Symbol:  symbol,
		Name:    name,
		AddedAt: time.Now(),
	}
	s.watchlist[item.ID] = item
	s.mu.Unlock()

	if err := s.repo.InsertWatchlistItem(ctx, item); err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("persisting watchlist item failed")
	}
	return item, nil
}

func (s *Service) DeleteWatchlistItem(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.watchlist[id]; !ok {
		s.mu.Unlock()
		return &domain.NotFoundError{Entity: "watchlist item", ID: id}
	}
	delete(s.watchlist, id)
	s.mu.Unlock()

	if err := s.repo.DeleteWatchlistItem(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting watchlist delete failed")
	}
	return nil
}

// Watchlist returns watched symbols with their last refreshed prices,
// sorted by symbol.
func (s *Service) Watchlist() []domain.WatchlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WatchlistItem, 0, len(s.watchlist))
	for _, w := range s.watchlist {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// RefreshWatchlist updates watched prices from the quote map. Watchlist
// prices are display-only and are not persisted.
func (s *Service) RefreshWatchlist(quotes map[string]domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range s.watchlist {
		q, ok := quotes[w.Symbol]
		if !ok {
			continue
		}
		w.Price = q.Price
		w.Change = q.Change
		w.ChangePercent = q.ChangePercent
		if q.Name != "" {
			w.Name = q.Name
		}
		s.watchlist[id] = w
	}
}

func validateHolding(h domain.Holding) error {
	if strings.TrimSpace(h.Symbol) == "" {
		return &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if h.Shares <= 0 {
		return &domain.ValidationError{Field: "shares", Reason: "must be positive"}
	}
	if h.AvgCost <= 0 {
		return &domain.ValidationError{Field: "avg_cost", Reason: "must be positive"}
	}
	return nil
}
