package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mhalkiad/compass/internal/domain"
)

// exportVersion guards the wire layout of exported archives.
const exportVersion = 1

// ExportPayload is the user-entered state of the system. Derived state
// (spent caches, valuations, insights, alerts) is deliberately absent: the
// first pass after an import rebuilds all of it.
type ExportPayload struct {
	Version      int                    `msgpack:"version"`
	ExportedAt   time.Time              `msgpack:"exported_at"`
	Transactions []domain.Transaction   `msgpack:"transactions"`
	Budgets      []domain.Budget        `msgpack:"budgets"`
	Goals        []domain.Goal          `msgpack:"goals"`
	Holdings     []domain.Holding       `msgpack:"holdings"`
	Watchlist    []domain.WatchlistItem `msgpack:"watchlist"`
}

// Export encodes the current user-entered state as a msgpack archive.
func (c *Core) Export() ([]byte, error) {
	payload := ExportPayload{
		Version:      exportVersion,
		ExportedAt:   time.Now(),
		Transactions: c.ledger.All(),
		Budgets:      c.budgets.All(),
		Goals:        c.goals.All(),
		Holdings:     c.portfolio.Holdings(),
		Watchlist:    c.portfolio.Watchlist(),
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// Import restores an archive additively through the normal mutation paths,
// so every entry is re-validated and re-keyed. Entries that fail validation
// or collide (duplicate budgets) are skipped and counted. One pass runs at
// the end.
func (c *Core) Import(ctx context.Context, data []byte) (imported, skipped int, err error) {
	var payload ExportPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return 0, 0, fmt.Errorf("decoding import: %w", err)
	}
	if payload.Version != exportVersion {
		return 0, 0, fmt.Errorf("unsupported export version %d", payload.Version)
	}

	for _, tx := range payload.Transactions {
		if _, err := c.ledger.Record(ctx, tx); err != nil {
			skipped++
			continue
		}
		imported++
	}
	for _, b := range payload.Budgets {
		if _, err := c.budgets.Create(ctx, b); err != nil {
			skipped++
			continue
		}
		imported++
	}
	for _, g := range payload.Goals {
		if _, err := c.goals.Create(ctx, g); err != nil {
			skipped++
			continue
		}
		imported++
	}
	for _, h := range payload.Holdings {
		if _, err := c.portfolio.AddHolding(ctx, h); err != nil {
			skipped++
			continue
		}
		imported++
	}
	for _, w := range payload.Watchlist {
		if _, err := c.portfolio.AddWatchlistItem(ctx, w.Symbol, w.Name); err != nil {
			skipped++
			continue
		}
		imported++
	}

	c.log.Info().Int("imported", imported).Int("skipped", skipped).Msg("import complete")
	c.Trigger()
	return imported, skipped, nil
}
