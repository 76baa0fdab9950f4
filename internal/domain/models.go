// Package domain defines the core entities of the finance dashboard.
// The domain layer is pure: no storage, transport, or logging dependencies.
package domain

import (
	"strings"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
// Amounts are always stored as unsigned magnitudes; the type field is the
// single source of truth for direction.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction is one ledger entry. Category is free text and is matched
// case-insensitively everywhere.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      float64         `json:"amount"` // unsigned magnitude
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Budget is a spending limit for one category in one calendar month.
// Spent is a cache: it is recomputed from the ledger on every reconciliation
// pass and must never be trusted from storage.
type Budget struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Spent     float64   `json:"spent"`
	Month     string    `json:"month"` // month name, e.g. "January"
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetStatus is the derived view of one category's budget performance.
type BudgetStatus struct {
	Spent        float64 `json:"spent"`
	Budget       float64 `json:"budget"`
	Percentage   float64 `json:"percentage"`
	IsOverBudget bool    `json:"is_over_budget"`
}

// GoalKind classifies a savings goal once, at creation time. The kind selects
// the auto-advancement formula; free-text category scanning happens exactly
// once so a title like "Emergency Car Fund" cannot match two rules per pass.
type GoalKind string

const (
	GoalEmergency     GoalKind = "emergency"
	GoalSavings       GoalKind = "savings"
	GoalInvestment    GoalKind = "investment"
	GoalDiscretionary GoalKind = "discretionary"
	GoalOther         GoalKind = "other"
)

// ClassifyGoal derives the goal kind from its free-text category.
// First match wins, checked in priority order.
func ClassifyGoal(category string) GoalKind {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "emergency"):
		return GoalEmergency
	case strings.Contains(c, "savings"):
		return GoalSavings
	case strings.Contains(c, "investment"):
		return GoalInvestment
	case strings.Contains(c, "vacation"), strings.Contains(c, "car"), strings.Contains(c, "wedding"):
		return GoalDiscretionary
	default:
		return GoalOther
	}
}

// Goal is a savings target. CurrentAmount is advanced by the reconciler from
// ledger and portfolio signals, not only by user edits.
type Goal struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Kind          GoalKind  `json:"kind"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	TargetDate    time.Time `json:"target_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// GoalState is the transient per-goal state machine value. It is recomputed
// on every pass and never stored.
type GoalState string

const (
	GoalBehind    GoalState = "behind"
	GoalOnTrack   GoalState = "on_track"
	GoalCompleted GoalState = "completed"
)

// GoalProgress is the derived view of one goal at a point in time.
type GoalProgress struct {
	GoalID   string    `json:"goal_id"`
	Progress float64   `json:"progress"` // percent; CurrentAmount itself is never clamped
	DaysLeft int       `json:"days_left"`
	State    GoalState `json:"state"`
}

// Holding is one portfolio position. Derived fields (TotalValue, DayChange,
// TotalGainLoss, Allocation) are recomputed whenever quotes arrive.
type Holding struct {
	ID                   string    `json:"id"`
	Symbol               string    `json:"symbol"`
	Name                 string    `json:"name"`
	Shares               float64   `json:"shares"`
	AvgCost              float64   `json:"avg_cost"`
	CurrentPrice         float64   `json:"current_price"`
	TotalValue           float64   `json:"total_value"`
	DayChange            float64   `json:"day_change"`
	DayChangePercent     float64   `json:"day_change_percent"`
	TotalGainLoss        float64   `json:"total_gain_loss"`
	TotalGainLossPercent float64   `json:"total_gain_loss_percent"`
	Allocation           float64   `json:"allocation"` // percent of total portfolio value
	LastUpdated          time.Time `json:"last_updated"`
}

// WatchlistItem tracks a symbol the user watches. Informational only: it
// never feeds any other entity.
type WatchlistItem struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	AddedAt       time.Time `json:"added_at"`
}

// Quote is a market feed price snapshot for one symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Region        string    `json:"region"`
	Timestamp     time.Time `json:"timestamp"`
}

// AlertType identifies the condition class an alert was raised for.
type AlertType string

const (
	AlertBudgetWarning AlertType = "budget_warning"
	AlertGoalMilestone AlertType = "goal_milestone"
	AlertMarket        AlertType = "market_alert"
)

// Alert is one entry in the append-only alert log. The reconciler appends,
// the user toggles IsRead.
type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// InsightType identifies the rule that produced an insight.
type InsightType string

const (
	// Advisory insights carry a priority (1 = highest).
	InsightBudgetOptimization InsightType = "budget_optimization"
	InsightSavingsOpportunity InsightType = "savings_opportunity"
	InsightDebtReduction      InsightType = "debt_reduction"
	InsightInvestmentAdvice   InsightType = "investment_advice"
	InsightEmergencyFund      InsightType = "emergency_fund"
	InsightGoalAdjustment     InsightType = "goal_adjustment"

	// Market insights carry a fixed confidence score instead of a priority.
	InsightDailySummary          InsightType = "daily_summary"
	InsightRiskAnalysis          InsightType = "risk_analysis"
	InsightVolatilityForecast    InsightType = "volatility_forecast"
	InsightRebalancingSuggestion InsightType = "rebalancing_suggestion"
)

// Insight is one generated advisory or market observation. The insight set is
// regenerated wholesale each pass; no history is retained by the core.
type Insight struct {
	ID         string      `json:"id"`
	Type       InsightType `json:"type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Priority   int         `json:"priority,omitempty"`   // advisory insights: 1..3
	Confidence float64     `json:"confidence,omitempty"` // market insights: 0..1
	Timestamp  time.Time   `json:"timestamp"`
}

// FinancialSummary aggregates the current month's headline numbers.
type FinancialSummary struct {
	TotalIncome    float64 `json:"total_income"`
	TotalExpenses  float64 `json:"total_expenses"`
	NetWorth       float64 `json:"net_worth"`
	PortfolioValue float64 `json:"portfolio_value"`
	PortfolioGains float64 `json:"portfolio_gains"`
	GoalsProgress  float64 `json:"goals_progress"` // average percent across goals
	SavingsRate    float64 `json:"savings_rate"`   // percent of income
}

// Snapshot is the unified view published after every reconciliation pass.
// It is the sole channel through which consumers observe core state; they
// never compute spend, progress, or valuation themselves.
type Snapshot struct {
	Transactions []Transaction    `json:"transactions"`
	Budgets      []Budget         `json:"budgets"`
	Goals        []Goal           `json:"goals"`
	GoalProgress []GoalProgress   `json:"goal_progress"`
	Holdings     []Holding        `json:"holdings"`
	Watchlist    []WatchlistItem  `json:"watchlist"`
	Alerts       []Alert          `json:"alerts"`
	Insights     []Insight        `json:"insights"`
	Summary      FinancialSummary `json:"summary"`
	LastUpdate   time.Time        `json:"last_update"`
}
