package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mhalkiad/compass/internal/domain"
)

func (c *Core) buildSnapshot(st *passState) domain.Snapshot {
	holdings := c.portfolio.Holdings()

	goalsList := c.goals.All()
	var goalsProgress float64
	if len(st.goalProgress) > 0 {
		for _, p := range st.goalProgress {
			goalsProgress += p.Progress
		}
		goalsProgress = domain.Round(goalsProgress/float64(len(st.goalProgress)), 2)
	}

	savingsRate := 0.0
	if st.income > 0 {
		savingsRate = domain.Round((st.income-st.expenses)/st.income*100, 2)
	}

	return domain.Snapshot{
		Transactions: c.ledger.All(),
		Budgets:      c.budgets.All(),
		Goals:        goalsList,
		GoalProgress: append([]domain.GoalProgress(nil), st.goalProgress...),
		Holdings:     holdings,
		Watchlist:    c.portfolio.Watchlist(),
		Alerts:       c.alerts.All(),
		Insights:     append([]domain.Insight(nil), st.insights...),
		Summary: domain.FinancialSummary{
			TotalIncome:    st.income,
			TotalExpenses:  st.expenses,
			NetWorth:       domain.Round(st.income-st.expenses+st.portfolioValue, 2),
			PortfolioValue: st.portfolioValue,
			PortfolioGains: st.portfolioGains,
			GoalsProgress:  goalsProgress,
			SavingsRate:    savingsRate,
		},
		LastUpdate: st.now,
	}
}

// saveSnapshotCache persists the published snapshot so a restart can serve
// reads before the first pass completes.
func (c *Core) saveSnapshotCache(ctx context.Context, snap domain.Snapshot) error {
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO snapshot_cache (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		payload, time.Now())
	if err != nil {
		return fmt.Errorf("storing snapshot cache: %w", err)
	}
	return nil
}

func (c *Core) loadSnapshotCache(ctx context.Context) (domain.Snapshot, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM snapshot_cache WHERE id = 1`).Scan(&payload)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading snapshot cache: %w", err)
	}
	var snap domain.Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding snapshot cache: %w", err)
	}
	return snap, nil
}
