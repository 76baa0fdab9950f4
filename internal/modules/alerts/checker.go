package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/mhalkiad/compass/internal/domain"
)

// CheckInputs is the cross-module state the alert conditions read.
type CheckInputs struct {
	Budgets      []domain.Budget
	Goals        []domain.Goal
	GoalProgress []domain.GoalProgress
	Holdings     []domain.Holding
}

// Check evaluates every alert condition against the pass state. Each
// observation also tells the service about conditions that are NOT firing,
// which is what arms them to fire again later. Returns the alerts raised
// this pass.
func (s *Service) Check(ctx context.Context, in CheckInputs, now time.Time) []domain.Alert {
	var raised []domain.Alert

	for _, b := range in.Budgets {
		firing := b.Spent > b.Amount*1.1
		title := fmt.Sprintf("%s over budget", b.Category)
		msg := fmt.Sprintf("Spending in %s reached $%.2f against a $%.2f budget for %s %d.",
			b.Category, b.Spent, b.Amount, b.Month, b.Year)
		if a, ok := s.Observe(ctx, domain.AlertBudgetWarning, b.ID, firing, title, msg, now); ok {
			raised = append(raised, a)
		}
	}

	progress := make(map[string]domain.GoalProgress, len(in.GoalProgress))
	for _, p := range in.GoalProgress {
		progress[p.GoalID] = p
	}
	for _, g := range in.Goals {
		p, ok := progress[g.ID]
		if !ok {
			continue
		}
		firing := p.Progress >= 50 && p.Progress < 75
		title := fmt.Sprintf("%s halfway there", g.Title)
		msg := fmt.Sprintf("%s is %.0f%% funded ($%.2f of $%.2f).",
			g.Title, p.Progress, g.CurrentAmount, g.TargetAmount)
		if a, ok := s.Observe(ctx, domain.AlertGoalMilestone, g.ID, firing, title, msg, now); ok {
			raised = append(raised, a)
		}
	}

	for _, h := range in.Holdings {
		firing := h.TotalGainLossPercent > 10
		title := fmt.Sprintf("%s up strongly", h.Symbol)
		msg := fmt.Sprintf("%s is up %.1f%% over its average cost.", h.Symbol, h.TotalGainLossPercent)
		if a, ok := s.Observe(ctx, domain.AlertMarket, h.Symbol, firing, title, msg, now); ok {
			raised = append(raised, a)
		}
	}

	return raised
}
