package goals

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// Signals carries the cross-module inputs the auto-advancement formulas
// consume. The reconciler gathers them once per pass.
type Signals struct {
	MonthlySavings float64
	PortfolioValue float64
	PortfolioGains float64
}

// advanceFloor is the materiality threshold: advances smaller than this many
// currency units are dropped to keep noise out of storage and the event log.
const advanceFloor = 10.0

// Tracker holds goals in memory and writes through to the repository.
type Tracker struct {
	mu    sync.RWMutex
	goals map[string]domain.Goal

	repo *Repository
	log  zerolog.Logger
}

func NewTracker(repo *Repository, logger zerolog.Logger) *Tracker {
	return &Tracker{
		goals: make(map[string]domain.Goal),
		repo:  repo,
		log:   logger.With().Str("service", "goals").Logger(),
	}
}

func (t *Tracker) Load(ctx context.Context) {
	goals, err := t.repo.LoadAll(ctx)
	if err != nil {
		t.log.Error().Err(err).Msg("loading goals failed, starting empty")
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, g := range goals {
		t.goals[g.ID] = g
	}
	t.log.Info().Int("count", len(goals)).Msg("goals loaded")
}

// Create adds a goal. The kind is classified from the category exactly once,
// here; auto-advancement never re-reads the free-text category.
func (t *Tracker) Create(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	if err := validate(g); err != nil {
		return domain.Goal{}, err
	}

	g.ID = uuid.NewString()
	g.Kind = domain.ClassifyGoal(g.Category)
	g.CreatedAt = time.Now()

	t.mu.Lock()
	t.goals[g.ID] = g
	t.mu.Unlock()

	if err := t.repo.Insert(ctx, g); err != nil {
		t.log.Error().Err(err).Str("id", g.ID).Msg("persisting goal failed")
	}
	return g, nil
}

// Update replaces the mutable fields of a goal. Changing the category
// reclassifies the kind.
func (t *Tracker) Update(ctx context.Context, id string, upd domain.Goal) (domain.Goal, error) {
	if err := validate(upd); err != nil {
		return domain.Goal{}, err
	}

	t.mu.Lock()
	cur, ok := t.goals[id]
	if !ok {
		t.mu.Unlock()
		return domain.Goal{}, &domain.NotFoundError{Entity: "goal", ID: id}
	}
	if !strings.EqualFold(cur.Category, upd.Category) {
		cur.Kind = domain.ClassifyGoal(upd.Category)
	}
	cur.Title = upd.Title
	cur.Description = upd.Description
	cur.Category = upd.Category
	cur.TargetAmount = upd.TargetAmount
	cur.CurrentAmount = upd.CurrentAmount
	cur.TargetDate = upd.TargetDate
	t.goals[id] = cur
	t.mu.Unlock()

	if err := t.repo.Update(ctx, cur); err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("persisting goal update failed")
	}
	return cur, nil
}

func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	if _, ok := t.goals[id]; !ok {
		t.mu.Unlock()
		return &domain.NotFoundError{Entity: "goal", ID: id}
	}
	delete(t.goals, id)
	t.mu.Unlock()

	if err := t.repo.Delete(ctx, id); err != nil {
		t.log.Error().Err(err).Str("id", id).Msg("persisting goal delete failed")
	}
	return nil
}

// All returns goals ordered by creation time.
func (t *Tracker) All() []domain.Goal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Goal, 0, len(t.goals))
	for _, g := range t.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Progress derives the transient state for one goal. The stored
// CurrentAmount is never clamped; only the reported percentage is.
func Progress(g domain.Goal, now time.Time) domain.GoalProgress {
	pct := 0.0
	if g.TargetAmount > 0 {
		pct = domain.Round(g.CurrentAmount/g.TargetAmount*100, 2)
	}
	daysLeft := int(math.Ceil(g.TargetDate.Sub(now).Hours() / 24))

	state := domain.GoalBehind
	switch {
	case g.CurrentAmount >= g.TargetAmount:
		state = domain.GoalCompleted
	case pct >= 100-(float64(daysLeft)/365*100):
		state = domain.GoalOnTrack
	}

	reported := pct
	if reported > 100 {
		reported = 100
	}
	return domain.GoalProgress{
		GoalID:   g.ID,
		Progress: reported,
		DaysLeft: daysLeft,
		State:    state,
	}
}

// MonthlyNeeded is the contribution per month required to reach the target
// by its date. Zero when the goal is complete or past due.
func MonthlyNeeded(g domain.Goal, now time.Time) float64 {
	remaining := g.TargetAmount - g.CurrentAmount
	days := g.TargetDate.Sub(now).Hours() / 24
	if remaining <= 0 || days <= 0 {
		return 0
	}
	return domain.Round(remaining/(days/30), 2)
}

// AutoAdvance applies the per-kind advancement formulas. An advance is
// applied only when it is material (more than advanceFloor above the current
// balance) and is always clamped to the target. Returns true when any goal
// changed.
func (t *Tracker) AutoAdvance(ctx context.Context, sig Signals) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := false
	for id, g := range t.goals {
		next := g.CurrentAmount
		target := g.TargetAmount

		switch g.Kind {
		case domain.GoalEmergency, domain.GoalSavings:
			next += 0.3 * sig.MonthlySavings
		case domain.GoalInvestment:
			next += math.Max(0, 0.1*sig.PortfolioGains) + 0.15*sig.MonthlySavings
			if sig.PortfolioValue > target {
				target = math.Max(target, domain.Round(sig.PortfolioValue*1.2, 2))
			}
		case domain.GoalDiscretionary:
			next += 0.2 * sig.MonthlySavings
		default:
			continue
		}

		next = domain.Round(next, 2)
		if next > target {
			next = target
		}

		if next <= g.CurrentAmount+advanceFloor && target == g.TargetAmount {
			continue
		}
		if next > g.CurrentAmount+advanceFloor {
			g.CurrentAmount = next
		}
		g.TargetAmount = target
		t.goals[id] = g
		changed = true

		if err := t.repo.Update(ctx, g); err != nil {
			t.log.Error().Err(err).Str("id", id).Msg("persisting goal advance failed")
		}
		t.log.Debug().
			Str("id", id).
			Str("kind", string(g.Kind)).
			Float64("current", g.CurrentAmount).
			Float64("target", g.TargetAmount).
			Msg("goal advanced")
	}
	return changed
}

func validate(g domain.Goal) error {
	if strings.TrimSpace(g.Title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if g.TargetAmount <= 0 {
		return &domain.ValidationError{Field: "target_amount", Reason: "must be positive"}
	}
	if g.CurrentAmount < 0 {
		return &domain.ValidationError{Field: "current_amount", Reason: "must not be negative"}
	}
	if g.TargetDate.IsZero() {
		return &domain.ValidationError{Field: "target_date", Reason: "must be set"}
	}
	return nil
}
