// Package ledger records income and expense transactions and derives the
// spending aggregates the rest of the system consumes.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// Repository persists transactions. All reads during normal operation are
// served from the service's in-memory state; the repository is only read at
// startup.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: logger.With().Str("repo", "ledger").Logger(),
	}
}

func (r *Repository) Insert(ctx context.Context, tx domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount, description, category, date, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount, tx.Description, tx.Category, tx.Date, tx.Type, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, tx domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET amount = ?, description = ?, category = ?, date = ?, type = ?
		WHERE id = ?`,
		tx.Amount, tx.Description, tx.Category, tx.Date, tx.Type, tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, description, category, date, type, created_at
		FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.Amount, &tx.Description, &tx.Category, &tx.Date, &tx.Type, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
