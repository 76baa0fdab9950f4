// Package budget tracks per-category monthly spending limits and their
// derived status.
package budget

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
		log: logger.With().Str("repo", "budget").Logger(),
	}
}

func (r *Repository) Insert(ctx context.Context, b domain.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, category, amount, spent, month, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Category, b.Amount, b.Spent, b.Month, b.Year, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting budget %s: %w", b.ID, err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, b domain.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET category = ?, amount = ?, spent = ?, month = ?, year = ?
		WHERE id = ?`,
		b.Category, b.Amount, b.Spent, b.Month, b.Year, b.ID)
	if err != nil {
		return fmt.Errorf("updating budget %s: %w", b.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting budget %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, amount, spent, month, year, created_at
		FROM budgets ORDER BY year, month, category`)
	if err != nil {
		return nil, fmt.Errorf("loading budgets: %w", err)
	}
	defer rows.Close()

	var out []domain.Budget
	for rows.Next() {
		var b domain.Budget
		if err := rows.Scan(&b.ID, &b.Category, &b.Amount, &b.Spent, &b.Month, &b.Year, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
