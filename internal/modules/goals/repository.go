// Package goals manages savings goals, their progress state machine, and the
// reconciler-driven auto-advancement of goal balances.
package goals

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
		log: logger.With().Str("repo", "goals").Logger(),
	}
}

func (r *Repository) Insert(ctx context.Context, g domain.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, title, description, category, kind, target_amount, current_amount, target_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Description, g.Category, g.Kind, g.TargetAmount, g.CurrentAmount, g.TargetDate, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting goal %s: %w", g.ID, err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, g domain.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE goals SET title = ?, description = ?, category = ?, kind = ?,
			target_amount = ?, current_amount = ?, target_date = ?
		WHERE id = ?`,
		g.Title, g.Description, g.Category, g.Kind, g.TargetAmount, g.CurrentAmount, g.TargetDate, g.ID)
	if err != nil {
		return fmt.Errorf("updating goal %s: %w", g.ID, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting goal %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, category, kind, target_amount, current_amount, target_date, created_at
		FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("loading goals: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.Kind,
			&g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
