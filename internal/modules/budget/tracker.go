package budget

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

// SpendingSource provides category spend totals. The ledger service satisfies
// it; the tracker never recomputes spend from raw transactions itself.
type SpendingSource interface {
	CategorySpending(category string, period domain.Period) float64
}

// Tracker holds budgets in memory and writes through to the repository.
type Tracker struct {
	mu      sync.RWMutex
	budgets map[string]domain.Budget

	repo *Repository
	log  zerolog.Logger
}

func NewTracker(repo *Repository, logger zerolog.Logger) *Tracker {
	return &Tracker{
		budgets: make(map[string]domain.Budget),
		repo:    repo,
		log:     logger.With().Str("service", "budget").Logger(),
	}
}

func (t *Tracker) Load(ctx context.Context) {
	budgets, err := t.repo.LoadAll(ctx)
	if err != nil {
		t.log.Error().Err(err).Msg("loading budgets failed, starting empty")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range budgets {
		t.budgets[b.ID] = b
	}
	t.log.Info().Int("count", len(budgets)).Msg("budgets loaded")
}

// Create adds a budget. At most one budget may exist per category per
// calendar month; category comparison is case-insensitive.
func (t *Tracker) Create(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	if err := validate(b); err != nil {
		return domain.Budget{}, err
	}

	t.mu.Lock()
	for _, existing := range t.budgets {
		if strings.EqualFold(existing.Category, b.Category) && existing.Month == b.Month && existing.Year == b.Year {
			t.mu.Unlock()
			return domain.Budget{}, &domain.DuplicateBudgetError{Category: b.Category, Month: b.Month, Year: b.Year}
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.Spent = 0
	t.budgets[b.ID] = b
	t.mu.Unlock()

	if err := t.repo.Insert(ctx, b); err != nil {
		t.log.Error().Err(err).Str("id", b.ID).Msg("persisting budget failed")
	}
	return b, nil
}

// Update replaces the mutable fields of a budget. The spent cache is left
// alone; the next reconciliation pass overwrites it.
func (t *Tracker) Update(ctx context.Context, id string, upd domain.Budget) (domain.Budget, error) {
	if err := validate(upd); err != nil {
		return domain.Budget{}, err
	}

	t.mu.Lock()
	cur, ok := t.budgets[id]
	if !ok {
		t.mu.Unlock()
		return domain.Budget{}, &domain.NotFoundError{Entity: "budget", ID: id}
	}
	cur.Category = upd.Category
	cur.Amount = upd.Amount
	cur.Month = upd.Month
	cur.Year = upd.Year
	t.budgets[id] = cur
	t.mu.Unlock()

	if err := t.repo.Update(ctx, cur); err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("persisting budget update failed")
	}
	return cur, nil
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	if _, ok := t.budgets[id]; !ok {
		t.mu.Unlock()
		return &domain.NotFoundError{Entity: "budget", ID: id}
	}
	delete(t.budgets, id)
	t.mu.Unlock()

	if err := t.repo.Delete(ctx, id); err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("persisting budget delete failed")
	}
	return nil
}

// All returns budgets ordered by year, month, category.
func (t *Tracker) All() []domain.Budget {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Budget, 0, len(t.budgets))
	for _, b := range t.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// RecomputeSpent overwrites every budget's spent cache from the ledger.
// Stored values are never trusted; each pass derives them fresh.
func (t *Tracker) RecomputeSpent(ctx context.Context, src SpendingSource) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, b := range t.budgets {
		spent := src.CategorySpending(b.Category, domain.Period{Month: b.Month, Year: b.Year})
		if spent == b.Spent {
			continue
		}
		b.Spent = spent
		t.budgets[id] = b
		if err := t.repo.Update(ctx, b); err != nil {
			t.log.Error().Err(err).Str("id", id).Msg("persisting spent cache failed")
		}
	}
}

// StatusFor derives the consumption view for a category in the given period.
// Spend comes live from the ledger, never from the cache. Spending without a
// budget is not over budget: the zero-budget view still reports the spend so
// the caller can show it, but percentage and the over flag stay zero.
func (t *Tracker) StatusFor(category string, period domain.Period, src SpendingSource) domain.BudgetStatus {
	spent := src.CategorySpending(category, period)

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.budgets {
		if strings.EqualFold(b.Category, category) && b.Month == period.Month && b.Year == period.Year {
			b.Spent = spent
			return Status(b)
		}
	}
	return domain.BudgetStatus{Spent: spent}
}

// Status derives the budget's consumption view. A zero-amount budget reports
// 0% rather than dividing by zero.
func Status(b domain.Budget) domain.BudgetStatus {
	status := domain.BudgetStatus{
		Spent:  b.Spent,
		Budget: b.Amount,
	}
	if b.Amount > 0 {
		status.Percentage = domain.Round(b.Spent/b.Amount*100, 2)
	}
	status.IsOverBudget = b.Spent > b.Amount
	return status
}

// AdjustInvestment resizes the given period's investment budget to track the
// portfolio. The suggested amount is 10% of portfolio value; it is applied
// only on a material upward deviation (more than 10% above the current
// amount). Budgets from other periods are never considered, and with several
// investment budgets in the period the first by category order is the one
// adjusted.
func (t *Tracker) AdjustInvestment(ctx context.Context, portfolioValue float64, period domain.Period) bool {
	suggested := domain.Round(portfolioValue*0.1, 2)

	t.mu.Lock()
	defer t.mu.Unlock()

	var candidates []domain.Budget
	for _, b := range t.budgets {
		if b.Month != period.Month || b.Year != period.Year {
			continue
		}
		if strings.Contains(strings.ToLower(b.Category), "invest") {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Category < candidates[j].Category
	})

	b := candidates[0]
	if suggested <= b.Amount*1.1 {
		return false
	}
	t.log.Info().
		Str("id", b.ID).
		Float64("from", b.Amount).
		Float64("to", suggested).
		Msg("investment budget adjusted to portfolio")
	b.Amount = suggested
	t.budgets[b.ID] = b
	if err := t.repo.Update(ctx, b); err != nil {
		t.log.Error().Err(err).Str("id", b.ID).Msg("persisting budget adjustment failed")
	}
	return true
}

func validate(b domain.Budget) error {
	if b.Amount <= 0 {
		return &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(b.Category) == "" {
		return &domain.ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if _, err := time.Parse("January", b.Month); err != nil {
		return &domain.ValidationError{Field: "month", Reason: "must be a month name"}
	}
	if b.Year < 2000 || b.Year > 2200 {
		return &domain.ValidationError{Field: "year", Reason: "out of range"}
	}
	return nil
}
