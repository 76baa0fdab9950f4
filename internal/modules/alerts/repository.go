// Package alerts maintains the append-only alert log and the deduplication
// that keeps repeated reconciliation passes from re-raising the same
// condition.
package alerts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// stored is an alert row plus the dedup key parts that never leave storage.
type stored struct {
	alert   domain.Alert
	subject string
	period  string
}

type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRepository(db *sql.DB, logger zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: logger.With().Str("repo", "alerts").Logger(),
	}
}

func (r *Repository) Insert(ctx context.Context, a domain.Alert, subject, period string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, type, title, message, is_read, subject, period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Type, a.Title, a.Message, a.IsRead, subject, period, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting alert %s: %w", a.ID, err)
	}
	return nil
}

func (r *Repository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking alert %s read: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]stored, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, title, message, is_read, subject, period, created_at
		FROM alerts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("loading alerts: %w", err)
	}
	defer rows.Close()

	var out []stored
	for rows.Next() {
		var s stored
		if err := rows.Scan(&s.alert.ID, &s.alert.Type, &s.alert.Title, &s.alert.Message,
			&s.alert.IsRead, &s.subject, &s.period, &s.alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
