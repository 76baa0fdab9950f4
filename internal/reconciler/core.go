package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/domain"
	"github.com/mhalkiad/compass/internal/events"
	"github.com/mhalkiad/compass/internal/modules/alerts"
	"github.com/mhalkiad/compass/internal/modules/budget"
	"github.com/mhalkiad/compass/internal/modules/goals"
	"github.com/mhalkiad/compass/internal/modules/insights"
	"github.com/mhalkiad/compass/internal/modules/market"
	"github.com/mhalkiad/compass/internal/modules/portfolio"
)

// Core owns all module services and is the single writer over their state.
// Mutations come in through its API, reconciliation passes run on its
// processor goroutine, and consumers read the published snapshot.
type Core struct {
	ledger    LedgerService
	budgets   *budget.Tracker
	goals     *goals.Tracker
	portfolio *portfolio.Service
	alerts    *alerts.Service
	feed      market.Feed
	bus       *events.Bus
	db        *database.DB
	log       zerolog.Logger

	pipe *pipeline

	// trigger holds at most one pending pass request; concurrent requests
	// coalesce into it.
	trigger chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	snapMu     sync.RWMutex
	snapshot   domain.Snapshot
	lastQuotes map[string]domain.Quote
}

// LedgerService is the slice of the ledger the core consumes.
type LedgerService interface {
	Load(ctx context.Context)
	Record(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	Update(ctx context.Context, id string, upd domain.Transaction) (domain.Transaction, error)
	Delete(ctx context.Context, id string) error
	All() []domain.Transaction
	CategorySpending(category string, period domain.Period) float64
	PeriodSummary(period domain.Period) (income, expenses float64)
	MonthlySavings(period domain.Period) float64
}

type Deps struct {
	Ledger    LedgerService
	Budgets   *budget.Tracker
	Goals     *goals.Tracker
	Portfolio *portfolio.Service
	Alerts    *alerts.Service
	Feed      market.Feed
	Bus       *events.Bus
	DB        *database.DB
}

func New(deps Deps, logger zerolog.Logger) (*Core, error) {
	c := &Core{
		ledger:     deps.Ledger,
		budgets:    deps.Budgets,
		goals:      deps.Goals,
		portfolio:  deps.Portfolio,
		alerts:     deps.Alerts,
		feed:       deps.Feed,
		bus:        deps.Bus,
		db:         deps.DB,
		log:        logger.With().Str("component", "reconciler").Logger(),
		trigger:    make(chan struct{}, 1),
		stop:       make(chan struct{}),
		lastQuotes: make(map[string]domain.Quote),
	}

	pipe, err := newPipeline(c.stages())
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	c.pipe = pipe
	return c, nil
}

func (c *Core) stages() []stage {
	return []stage{
		{
			name:   "quotes",
			reads:  []string{entSymbols},
			writes: []string{entQuotes},
			run:    c.stageQuotes,
		},
		{
			name:   "ledger_summary",
			reads:  []string{entTransactions},
			writes: []string{entSummary},
			run:    c.stageLedgerSummary,
		},
		{
			name:   "portfolio_revalue",
			reads:  []string{entQuotes, entHoldings},
			writes: []string{entHoldings},
			run:    c.stagePortfolioRevalue,
		},
		{
			name:   "watchlist_refresh",
			reads:  []string{entQuotes, entWatchlist},
			writes: []string{entWatchlist},
			run:    c.stageWatchlistRefresh,
		},
		{
			name:   "budget_recompute",
			reads:  []string{entTransactions, entHoldings},
			writes: []string{entBudgets},
			run:    c.stageBudgetRecompute,
		},
		{
			name:   "goal_advance",
			reads:  []string{entSummary, entHoldings},
			writes: []string{entGoals},
			run:    c.stageGoalAdvance,
		},
		{
			name:   "insights",
			reads:  []string{entBudgets, entGoals, entSummary, entQuotes, entHoldings},
			writes: []string{entInsights},
			run:    c.stageInsights,
		},
		{
			name:   "alerts",
			reads:  []string{entBudgets, entGoals, entHoldings},
			writes: []string{entAlerts},
			run:    c.stageAlerts,
		},
		{
			name:   "snapshot",
			reads:  []string{entTransactions, entBudgets, entGoals, entHoldings, entWatchlist, entQuotes, entInsights, entAlerts, entSummary},
			writes: []string{entSnapshot},
			run:    c.stageSnapshot,
		},
	}
}

func (c *Core) stageQuotes(ctx context.Context, st *passState) error {
	symbols := c.portfolio.Symbols()
	if len(symbols) == 0 {
		symbols = market.DefaultUniverse
	}
	quotes, err := c.feed.FetchQuotes(ctx, symbols)
	if err != nil {
		// stale quotes beat no quotes
		c.snapMu.RLock()
		st.quotes = c.lastQuotes
		c.snapMu.RUnlock()
		return fmt.Errorf("fetching quotes: %w", err)
	}
	st.quotes = quotes
	c.snapMu.Lock()
	c.lastQuotes = quotes
	c.snapMu.Unlock()
	c.bus.Publish(&events.Event{Type: events.QuotesRefreshed, Module: "market"})
	return nil
}

func (c *Core) stageLedgerSummary(_ context.Context, st *passState) error {
	st.income, st.expenses = c.ledger.PeriodSummary(st.period)
	st.monthlySavings = domain.Round(st.income-st.expenses, 2)
	return nil
}

func (c *Core) stagePortfolioRevalue(ctx context.Context, st *passState) error {
	c.portfolio.Revalue(ctx, st.quotes, st.now)
	st.portfolioValue = c.portfolio.Value(st.quotes)
	st.portfolioGains = c.portfolio.Gains(st.quotes)
	return nil
}

func (c *Core) stageWatchlistRefresh(_ context.Context, st *passState) error {
	c.portfolio.RefreshWatchlist(st.quotes)
	return nil
}

func (c *Core) stageBudgetRecompute(ctx context.Context, st *passState) error {
	c.budgets.RecomputeSpent(ctx, c.ledger)
	c.budgets.AdjustInvestment(ctx, st.portfolioValue, st.period)
	return nil
}

func (c *Core) stageGoalAdvance(ctx context.Context, st *passState) error {
	changed := c.goals.AutoAdvance(ctx, goals.Signals{
		MonthlySavings: st.monthlySavings,
		PortfolioValue: st.portfolioValue,
		PortfolioGains: st.portfolioGains,
	})
	if changed {
		c.bus.Publish(&events.Event{Type: events.GoalChanged, Module: "goals"})
	}

	st.goalProgress = st.goalProgress[:0]
	for _, g := range c.goals.All() {
		st.goalProgress = append(st.goalProgress, goals.Progress(g, st.now))
	}
	return nil
}

func (c *Core) stageInsights(_ context.Context, st *passState) error {
	advisory := insights.Generate(insights.Inputs{
		Budgets:        c.budgets.All(),
		Goals:          c.goals.All(),
		MonthlyIncome:  st.income,
		MonthlyExpense: st.expenses,
	}, st.now)

	marketSet := insights.GenerateMarket(insights.MarketInputs{
		Quotes:   st.quotes,
		Holdings: c.portfolio.Holdings(),
	}, st.now)

	st.insights = append(advisory, marketSet...)
	return nil
}

func (c *Core) stageAlerts(ctx context.Context, st *passState) error {
	raised := c.alerts.Check(ctx, alerts.CheckInputs{
		Budgets:      c.budgets.All(),
		Goals:        c.goals.All(),
		GoalProgress: st.goalProgress,
		Holdings:     c.portfolio.Holdings(),
	}, st.now)
	st.alertsRaised = raised

	for _, a := range raised {
		c.bus.Publish(&events.Event{Type: events.AlertRaised, Module: "alerts", Data: a})
	}
	return nil
}

func (c *Core) stageSnapshot(ctx context.Context, st *passState) error {
	snap := c.buildSnapshot(st)

	c.snapMu.Lock()
	c.snapshot = snap
	c.snapMu.Unlock()

	if err := c.saveSnapshotCache(ctx, snap); err != nil {
		c.log.Error().Err(err).Msg("caching snapshot failed")
	}
	c.bus.Publish(&events.Event{Type: events.SnapshotPublished, Module: "reconciler"})
	return nil
}

// runPass executes one full reconciliation. Stage failures degrade: they are
// logged and the rest of the pipeline still runs.
func (c *Core) runPass(ctx context.Context) {
	start := time.Now()
	st := &passState{
		now:    start,
		period: domain.PeriodOf(start),
		quotes: map[string]domain.Quote{},
	}

	c.pipe.run(ctx, st, func(stageName string, err error) {
		c.log.Error().Err(err).Str("stage", stageName).Msg("pipeline stage failed")
	})

	c.log.Debug().
		Dur("took", time.Since(start)).
		Int("insights", len(st.insights)).
		Int("alerts_raised", len(st.alertsRaised)).
		Msg("reconciliation pass complete")
}

// Snapshot returns the last published snapshot.
func (c *Core) Snapshot() domain.Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot
}

// BudgetStatus reports the current month's consumption for a category,
// with spend taken live from the ledger.
func (c *Core) BudgetStatus(category string) domain.BudgetStatus {
	return c.budgets.StatusFor(category, domain.PeriodOf(time.Now()), c.ledger)
}

// Trigger requests a reconciliation pass. Requests arriving while one is
// pending or running coalesce into a single subsequent pass.
func (c *Core) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}
