package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/domain"
	"github.com/mhalkiad/compass/internal/events"
	"github.com/mhalkiad/compass/internal/modules/alerts"
	"github.com/mhalkiad/compass/internal/modules/budget"
	"github.com/mhalkiad/compass/internal/modules/goals"
	"github.com/mhalkiad/compass/internal/modules/ledger"
	"github.com/mhalkiad/compass/internal/modules/market"
	"github.com/mhalkiad/compass/internal/modules/portfolio"
)

// fixedFeed returns the same quotes on every fetch.
type fixedFeed map[string]domain.Quote

func (f fixedFeed) FetchQuotes(_ context.Context, symbols []string) (map[string]domain.Quote, error) {
	out := make(map[string]domain.Quote)
	for _, sym := range symbols {
		if q, ok := f[sym]; ok {
			out[sym] = q
		}
	}
	return out, nil
}

func newTestCoreWithFeed(t *testing.T, feed market.Feed) *Core {
	t.Helper()
	db, err := database.New(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	nop := zerolog.Nop()
	c, err := New(Deps{
		Ledger:    ledger.NewService(ledger.NewRepository(db.DB, nop), nop),
		Budgets:   budget.NewTracker(budget.NewRepository(db.DB, nop), nop),
		Goals:     goals.NewTracker(goals.NewRepository(db.DB, nop), nop),
		Portfolio: portfolio.NewService(portfolio.NewRepository(db.DB, nop), nop),
		Alerts:    alerts.NewService(alerts.NewRepository(db.DB, nop), nop),
		Feed:      feed,
		Bus:       events.NewBus(),
		DB:        db,
	}, nop)
	require.NoError(t, err)
	return c
}

func newTestCore(t *testing.T) *Core {
	return newTestCoreWithFeed(t, market.NewSimFeed(42, zerolog.Nop()))
}

func TestPassDerivesBudgetSpentFromLedger(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	now := time.Now()
	period := domain.PeriodOf(now)

	_, err := c.CreateBudget(ctx, domain.Budget{Category: "Groceries", Amount: 400, Month: period.Month, Year: period.Year})
	require.NoError(t, err)
	_, err = c.AddTransaction(ctx, domain.Transaction{Amount: 120, Category: "groceries", Type: domain.TransactionExpense, Date: now})
	require.NoError(t, err)

	c.runPass(ctx)

	snap := c.Snapshot()
	require.Len(t, snap.Budgets, 1)
	assert.Equal(t, 120.0, snap.Budgets[0].Spent)
	assert.Equal(t, 120.0, snap.Summary.TotalExpenses)
}

func TestPassRevaluesPortfolioFromQuotes(t *testing.T) {
	feed := fixedFeed{
		"AAPL": {Symbol: "AAPL", Price: 200, Change: 5, ChangePercent: 2.5},
	}
	c := newTestCoreWithFeed(t, feed)
	ctx := context.Background()

	_, err := c.AddHolding(ctx, domain.Holding{Symbol: "AAPL", Shares: 10, AvgCost: 100})
	require.NoError(t, err)

	c.runPass(ctx)

	snap := c.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, 200.0, snap.Holdings[0].CurrentPrice)
	assert.Equal(t, 2000.0, snap.Holdings[0].TotalValue)
	assert.Equal(t, 100.0, snap.Holdings[0].Allocation)
	assert.Equal(t, 2000.0, snap.Summary.PortfolioValue)
	assert.Equal(t, 1000.0, snap.Summary.PortfolioGains)
}

func TestPassRaisesAlertsOnce(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	now := time.Now()
	period := domain.PeriodOf(now)

	_, err := c.CreateBudget(ctx, domain.Budget{Category: "Dining", Amount: 100, Month: period.Month, Year: period.Year})
	require.NoError(t, err)
	_, err = c.AddTransaction(ctx, domain.Transaction{Amount: 150, Category: "Dining", Type: domain.TransactionExpense, Date: now})
	require.NoError(t, err)

	c.runPass(ctx)
	c.runPass(ctx)

	var budgetAlerts int
	for _, a := range c.Snapshot().Alerts {
		if a.Type == domain.AlertBudgetWarning {
			budgetAlerts++
		}
	}
	assert.Equal(t, 1, budgetAlerts)
}

func TestPassGeneratesInsights(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	now := time.Now()

	// 5% savings rate
	_, err := c.AddTransaction(ctx, domain.Transaction{Amount: 1000, Category: "Salary", Type: domain.TransactionIncome, Date: now})
	require.NoError(t, err)
	_, err = c.AddTransaction(ctx, domain.Transaction{Amount: 950, Category: "Rent", Type: domain.TransactionExpense, Date: now})
	require.NoError(t, err)

	c.runPass(ctx)

	snap := c.Snapshot()
	ids := map[string]bool{}
	for _, ins := range snap.Insights {
		ids[ins.ID] = true
	}
	assert.True(t, ids["savings"])
	// sim feed quotes flow through to market insights
	assert.True(t, ids["market_daily"])
	assert.Equal(t, 5.0, snap.Summary.SavingsRate)
}

func TestPassIsIdempotentOnQuietState(t *testing.T) {
	feed := fixedFeed{
		"AAPL":  {Symbol: "AAPL", Price: 150, Change: 0, ChangePercent: 0},
		"GOOGL": {Symbol: "GOOGL", Price: 2650, Change: 0, ChangePercent: 0},
	}
	c := newTestCoreWithFeed(t, feed)
	ctx := context.Background()
	c.portfolio.Load(ctx)

	c.runPass(ctx)
	first := c.Snapshot()
	c.runPass(ctx)
	second := c.Snapshot()

	stripClock := func(hs []domain.Holding) []domain.Holding {
		out := append([]domain.Holding(nil), hs...)
		for i := range out {
			out[i].LastUpdated = time.Time{}
		}
		return out
	}

	assert.Equal(t, first.Budgets, second.Budgets)
	assert.Equal(t, first.Goals, second.Goals)
	assert.Equal(t, stripClock(first.Holdings), stripClock(second.Holdings))
	assert.Equal(t, first.Alerts, second.Alerts)
	assert.Equal(t, len(first.Insights), len(second.Insights))
}

func TestRejectedMutationDoesNotTrigger(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	_, err := c.AddTransaction(ctx, domain.Transaction{Amount: -5, Category: "x", Type: domain.TransactionExpense})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	select {
	case <-c.trigger:
		t.Fatal("rejected mutation queued a pass")
	default:
	}
}

func TestTriggerCoalesces(t *testing.T) {
	c := newTestCore(t)

	c.Trigger()
	c.Trigger()
	c.Trigger()

	<-c.trigger
	select {
	case <-c.trigger:
		t.Fatal("triggers did not coalesce into a single pending pass")
	default:
	}
}

func TestStartStopLifecycle(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	c.Start(ctx)
	assert.False(t, c.Snapshot().LastUpdate.IsZero()) // initial pass ran

	c.Trigger()
	c.Stop()

	// second stop is a no-op
	c.Stop()
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := c.AddTransaction(ctx, domain.Transaction{Amount: 10, Category: "Coffee", Type: domain.TransactionExpense, Date: now})
	require.NoError(t, err)
	c.runPass(ctx)

	snap, err := c.loadSnapshotCache(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, 10.0, snap.Transactions[0].Amount)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestCore(t)
	ctx := context.Background()
	now := time.Now()
	period := domain.PeriodOf(now)

	_, err := src.AddTransaction(ctx, domain.Transaction{Amount: 50, Category: "Groceries", Type: domain.TransactionExpense, Date: now})
	require.NoError(t, err)
	_, err = src.CreateBudget(ctx, domain.Budget{Category: "Groceries", Amount: 400, Month: period.Month, Year: period.Year})
	require.NoError(t, err)
	_, err = src.CreateGoal(ctx, domain.Goal{Title: "Trip", Category: "Vacation", TargetAmount: 1000, TargetDate: now.AddDate(1, 0, 0)})
	require.NoError(t, err)
	_, err = src.AddHolding(ctx, domain.Holding{Symbol: "AAPL", Shares: 5, AvgCost: 100})
	require.NoError(t, err)

	data, err := src.Export()
	require.NoError(t, err)

	dst := newTestCore(t)
	imported, skipped, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 4, imported)
	assert.Zero(t, skipped)

	dst.runPass(ctx)
	snap := dst.Snapshot()
	assert.Len(t, snap.Transactions, 1)
	assert.Len(t, snap.Budgets, 1)
	assert.Len(t, snap.Goals, 1)
	assert.Len(t, snap.Holdings, 1)
	assert.Equal(t, 50.0, snap.Budgets[0].Spent) // derived state rebuilt, not imported
}

func TestImportSkipsCollisions(t *testing.T) {
	src := newTestCore(t)
	ctx := context.Background()
	period := domain.PeriodOf(time.Now())

	_, err := src.CreateBudget(ctx, domain.Budget{Category: "Groceries", Amount: 400, Month: period.Month, Year: period.Year})
	require.NoError(t, err)
	data, err := src.Export()
	require.NoError(t, err)

	dst := newTestCore(t)
	_, err = dst.CreateBudget(ctx, domain.Budget{Category: "Groceries", Amount: 300, Month: period.Month, Year: period.Year})
	require.NoError(t, err)

	imported, skipped, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 300.0, dst.budgets.All()[0].Amount) // existing budget untouched
}

func TestImportRejectsGarbage(t *testing.T) {
	c := newTestCore(t)
	_, _, err := c.Import(context.Background(), []byte("not msgpack"))
	assert.Error(t, err)
}
