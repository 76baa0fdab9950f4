// Package insights derives advisory and market insights from a consistent
// snapshot of the other modules' state. Everything here is pure: same inputs
// and clock, same insights, same IDs.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/mhalkiad/compass/internal/domain"
)

// Inputs is the cross-module state the advisory rules read. The reconciler
// assembles it once per pass so every rule sees the same numbers.
type Inputs struct {
	Budgets        []domain.Budget
	Goals          []domain.Goal
	MonthlyIncome  float64
	MonthlyExpense float64
}

// SavingsRate is the percentage of income retained. Zero income yields zero
// rather than a division blowup.
func (in Inputs) SavingsRate() float64 {
	if in.MonthlyIncome <= 0 {
		return 0
	}
	return domain.Round((in.MonthlyIncome-in.MonthlyExpense)/in.MonthlyIncome*100, 2)
}

// Generate runs the advisory rules and returns insights sorted by priority,
// then ID. IDs are deterministic per subject so repeated passes over
// unchanged state regenerate an identical set.
func Generate(in Inputs, now time.Time) []domain.Insight {
	var out []domain.Insight

	out = append(out, budgetRule(in.Budgets, now)...)
	if ins, ok := savingsRule(in, now); ok {
		out = append(out, ins)
	}
	out = append(out, goalRule(in.Goals, now)...)
	if ins, ok := emergencyRule(in, now); ok {
		out = append(out, ins)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// budgetRule flags categories running more than 10% over budget; 20% over is
// urgent.
func budgetRule(budgets []domain.Budget, now time.Time) []domain.Insight {
	var out []domain.Insight
	for _, b := range budgets {
		if b.Spent <= b.Amount*1.1 {
			continue
		}
		priority := 2
		if b.Spent > b.Amount*1.2 {
			priority = 1
		}
		over := domain.Round(b.Spent-b.Amount, 2)
		out = append(out, domain.Insight{
			ID:    "budget_" + b.ID,
			Type:  domain.InsightBudgetOptimization,
			Title: fmt.Sprintf("%s budget exceeded", b.Category),
			Content: fmt.Sprintf("Spending in %s is $%.2f over the $%.2f budget for %s %d. Consider reviewing recent transactions in this category.",
				b.Category, over, b.Amount, b.Month, b.Year),
			Priority:  priority,
			Timestamp: now,
		})
	}
	return out
}

// savingsRule flags a savings rate under 20%; under 10% is urgent.
func savingsRule(in Inputs, now time.Time) (domain.Insight, bool) {
	if in.MonthlyIncome <= 0 {
		return domain.Insight{}, false
	}
	rate := in.SavingsRate()
	if rate >= 20 {
		return domain.Insight{}, false
	}
	priority := 2
	if rate < 10 {
		priority = 1
	}
	return domain.Insight{
		ID:    "savings",
		Type:  domain.InsightSavingsOpportunity,
		Title: "Savings rate below target",
		Content: fmt.Sprintf("You are saving %.1f%% of income this month; 20%% is the usual guideline. Small recurring expenses are often the easiest place to recover the difference.",
			rate),
		Priority:  priority,
		Timestamp: now,
	}, true
}

// goalRule flags goals under 50% funded with less than a year to run. Less
// than six months makes it urgent.
func goalRule(goals []domain.Goal, now time.Time) []domain.Insight {
	var out []domain.Insight
	for _, g := range goals {
		days := g.TargetDate.Sub(now).Hours() / 24
		if days <= 0 || days >= 365 {
			continue
		}
		if g.TargetAmount <= 0 || g.CurrentAmount/g.TargetAmount >= 0.5 {
			continue
		}
		monthlyNeeded := domain.Round((g.TargetAmount-g.CurrentAmount)/(days/30), 2)
		priority := 2
		if days < 180 {
			priority = 1
		}
		out = append(out, domain.Insight{
			ID:    "goal_" + g.ID,
			Type:  domain.InsightGoalAdjustment,
			Title: fmt.Sprintf("%s needs attention", g.Title),
			Content: fmt.Sprintf("%s is %.0f%% funded with %.0f days left. Reaching the target requires about $%.2f per month from here.",
				g.Title, g.CurrentAmount/g.TargetAmount*100, days, monthlyNeeded),
			Priority:  priority,
			Timestamp: now,
		})
	}
	return out
}

// emergencyRule compares the emergency goal balance to six months of
// expenses; under three months is urgent.
func emergencyRule(in Inputs, now time.Time) (domain.Insight, bool) {
	if in.MonthlyExpense <= 0 {
		return domain.Insight{}, false
	}
	var fund *domain.Goal
	for i := range in.Goals {
		if in.Goals[i].Kind == domain.GoalEmergency {
			fund = &in.Goals[i]
			break
		}
	}
	if fund == nil || fund.CurrentAmount >= 6*in.MonthlyExpense {
		return domain.Insight{}, false
	}
	priority := 2
	if fund.CurrentAmount < 3*in.MonthlyExpense {
		priority = 1
	}
	months := fund.CurrentAmount / in.MonthlyExpense
	return domain.Insight{
		ID:    "emergency",
		Type:  domain.InsightEmergencyFund,
		Title: "Emergency fund below six months",
		Content: fmt.Sprintf("The emergency fund covers %.1f months of expenses; six months is the target. Consider directing a larger share of monthly savings here.",
			months),
		Priority:  priority,
		Timestamp: now,
	}, true
}
