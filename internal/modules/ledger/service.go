package ledger

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

// Service holds the ledger in memory and writes through to the repository.
// The reconciler core is the single writer; reads may come from any
// goroutine.
type Service struct {
	mu   sync.RWMutex
	txns map[string]domain.Transaction

	repo *Repository
	log  zerolog.Logger
}

func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{
		txns: make(map[string]domain.Transaction),
		repo: repo,
		log:  logger.With().Str("service", "ledger").Logger(),
	}
}

// Load populates the in-memory ledger from storage. A storage failure leaves
// the ledger empty and the system running.
func (s *Service) Load(ctx context.Context) {
	txns, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading transactions failed, starting empty")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txns {
		s.txns[tx.ID] = tx
	}
	s.log.Info().Int("count", len(txns)).Msg("ledger loaded")
}

// Record validates and stores a new transaction.
func (s *Service) Record(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := validate(tx); err != nil {
		return domain.Transaction{}, err
	}

	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	if tx.Date.IsZero() {
		tx.Date = tx.CreatedAt
	}

	s.mu.Lock()
	s.txns[tx.ID] = tx
	s.mu.Unlock()

	if err := s.repo.Insert(ctx, tx); err != nil {
		s.log.Error().Err(err).Str("id", tx.ID).Msg("persisting transaction failed")
	}
	return tx, nil
}

// Update replaces the mutable fields of an existing transaction.
func (s *Service) Update(ctx context.Context, id string, upd domain.Transaction) (domain.Transaction, error) {
	if err := validate(upd); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	cur, ok := s.txns[id]
	if !ok {
		s.mu.Unlock()
		return domain.Transaction{}, &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	cur.Amount = upd.Amount
	cur.Description = upd.Description
	cur.Category = upd.Category
	cur.Type = upd.Type
	if !upd.Date.IsZero() {
		cur.Date = upd.Date
	}
	s.txns[id] = cur
	s.mu.Unlock()

	if err := s.repo.Update(ctx, cur); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting transaction update failed")
	}
	return cur, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.txns[id]; !ok {
		s.mu.Unlock()
		return &domain.NotFoundError{Entity: "transaction", ID: id}
	}
	delete(s.txns, id)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting transaction delete failed")
	}
	return nil
}

// All returns the ledger sorted by date, newest first.
func (s *Service) All() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(s.txns))
	for _, tx := range s.txns {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CategorySpending sums expense amounts for one category within a period.
// Category matching is case-insensitive.
func (s *Service) CategorySpending(category string, period domain.Period) float64 {
	want := strings.ToLower(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, tx := range s.txns {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		if strings.ToLower(tx.Category) != want {
			continue
		}
		if !period.Contains(tx.Date) {
			continue
		}
		total += tx.Amount
	}
	return domain.Round(total, 2)
}

// PeriodSummary returns total income and total expenses for a period.
func (s *Service) PeriodSummary(period domain.Period) (income, expenses float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.txns {
		if !period.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			income += tx.Amount
		case domain.TransactionExpense:
			expenses += tx.Amount
		}
	}
	return domain.Round(income, 2), domain.Round(expenses, 2)
}

// MonthlySavings is income minus expenses for a period. Negative when the
// period ran a deficit.
func (s *Service) MonthlySavings(period domain.Period) float64 {
	income, expenses := s.PeriodSummary(period)
	return domain.Round(income-expenses, 2)
}

func validate(tx domain.Transaction) error {
	if tx.Amount <= 0 {
		return &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if tx.Type != domain.TransactionIncome && tx.Type != domain.TransactionExpense {
		return &domain.ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	if strings.TrimSpace(tx.Category) == "" {
		return &domain.ValidationError{Field: "category", Reason: "must not be empty"}
	}
	return nil
}
