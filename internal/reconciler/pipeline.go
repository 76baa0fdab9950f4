// Package reconciler runs the cross-module reconciliation pipeline: it
// gathers quotes, re-derives every cached aggregate from its source of
// truth, advances goals, regenerates insights, checks alert conditions, and
// publishes the unified snapshot.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/mhalkiad/compass/internal/domain"
)

// Entity names the state sets stages declare against. Base entities
// (transactions, symbols) are written only by user mutations, never by a
// stage.
const (
	entTransactions = "transactions"
	entSymbols      = "symbols"
	entQuotes       = "quotes"
	entHoldings     = "holdings"
	entWatchlist    = "watchlist"
	entBudgets      = "budgets"
	entGoals        = "goals"
	entSummary      = "summary"
	entInsights     = "insights"
	entAlerts       = "alerts"
	entSnapshot     = "snapshot"
)

// passState is the scratch space one pass threads through its stages.
type passState struct {
	now    time.Time
	period domain.Period

	quotes map[string]domain.Quote

	income         float64
	expenses       float64
	monthlySavings float64
	portfolioValue float64
	portfolioGains float64

	goalProgress []domain.GoalProgress
	insights     []domain.Insight
	alertsRaised []domain.Alert
}

// stage is one ordered step of the pipeline. Reads and Writes declare the
// entities it touches; the pipeline constructor rejects an order where a
// stage depends on state a later stage produces.
type stage struct {
	name   string
	reads  []string
	writes []string
	run    func(ctx context.Context, st *passState) error
}

type pipeline struct {
	stages []stage
}

// newPipeline validates stage ordering: every entity a stage reads must be a
// base entity, one of its own writes, or written by an earlier stage.
func newPipeline(stages []stage) (*pipeline, error) {
	base := map[string]bool{entTransactions: true, entSymbols: true}

	writtenBy := make(map[string]int)
	for i, s := range stages {
		for _, w := range s.writes {
			if _, ok := writtenBy[w]; !ok {
				writtenBy[w] = i
			}
		}
	}

	for i, s := range stages {
		for _, r := range s.reads {
			if base[r] {
				continue
			}
			first, ok := writtenBy[r]
			if !ok {
				return nil, fmt.Errorf("stage %s reads %s, which no stage writes", s.name, r)
			}
			if first > i {
				return nil, fmt.Errorf("stage %s reads %s before stage %s writes it", s.name, r, stages[first].name)
			}
		}
	}
	return &pipeline{stages: stages}, nil
}

// run executes the stages in order. A failing stage is logged by the caller
// and does not stop the pass: later stages run against the freshest state
// available.
func (p *pipeline) run(ctx context.Context, st *passState, onErr func(stageName string, err error)) {
	for _, s := range p.stages {
		if err := s.run(ctx, st); err != nil {
			onErr(s.name, err)
		}
	}
}
