// Package portfolio manages investment holdings, the watchlist, and the
// valuation pass that prices them from market quotes.
package portfolio

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: logger.With().Str("repo", "portfolio").Logger(),
	}
}

func (r *Repository) InsertHolding(ctx context.Context, h domain.Holding) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO holdings (id, symbol, name, shares, avg_cost, current_price, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Symbol, h.Name, h.Shares, h.AvgCost, h.CurrentPrice, h.LastUpdated)
	if err != nil {
		return fmt.Errorf("inserting holding %s: %w", h.Symbol, err)
	}
	return nil
}

func (r *Repository) UpdateHolding(ctx context.Context, h domain.Holding) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE holdings SET symbol = ?, name = ?, shares = ?, avg_cost = ?, current_price = ?, last_updated = ?
		WHERE id = ?`,
		h.Symbol, h.Name, h.Shares, h.AvgCost, h.CurrentPrice, h.LastUpdated, h.ID)
	if err != nil {
		return fmt.Errorf("updating holding %s: %w", h.ID, err)
	}
	return nil
}

func (r *Repository) DeleteHolding(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting holding %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadHoldings(ctx context.Context) ([]domain.Holding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, symbol, name, shares, avg_cost, current_price, last_updated
		FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}
	defer rows.Close()

	var out []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Name, &h.Shares, &h.AvgCost, &h.CurrentPrice, &h.LastUpdated); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repository) InsertWatchlistItem(ctx context.Context, w domain.WatchlistItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (id, symbol, name, added_at) VALUES (?, ?, ?, ?)`,
		w.ID, w.Symbol, w.Name, w.AddedAt)
	if err != nil {
		return fmt.Errorf("inserting watchlist item %s: %w", w.Symbol, err)
	}
	return nil
}

func (r *Repository) DeleteWatchlistItem(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting watchlist item %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadWatchlist(ctx context.Context) ([]domain.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, symbol, name, added_at FROM watchlist ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("loading watchlist: %w", err)
	}
	defer rows.Close()

	var out []domain.WatchlistItem
	for rows.Next() {
		var w domain.WatchlistItem
		if err := rows.Scan(&w.ID, &w.Symbol, &w.Name, &w.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning watchlist item: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
