package reconciler

import (
	"context"

	"github.com/mhalkiad/compass/internal/domain"
	"github.com/mhalkiad/compass/internal/events"
)

// Mutation API. Every accepted mutation publishes a change event and
// requests a pass; a rejected one changes nothing and triggers nothing.

func (c *Core) AddTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	out, err := c.ledger.Record(ctx, tx)
	if err != nil {
		return domain.Transaction{}, err
	}
	c.bus.Publish(&events.Event{Type: events.TransactionChanged, Module: "ledger", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) UpdateTransaction(ctx context.Context, id string, upd domain.Transaction) (domain.Transaction, error) {
	out, err := c.ledger.Update(ctx, id, upd)
	if err != nil {
		return domain.Transaction{}, err
	}
	c.bus.Publish(&events.Event{Type: events.TransactionChanged, Module: "ledger", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.ledger.Delete(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(&events.Event{Type: events.TransactionChanged, Module: "ledger"})
	c.Trigger()
	return nil
}

func (c *Core) CreateBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	out, err := c.budgets.Create(ctx, b)
	if err != nil {
		return domain.Budget{}, err
	}
	c.bus.Publish(&events.Event{Type: events.BudgetChanged, Module: "budget", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) UpdateBudget(ctx context.Context, id string, upd domain.Budget) (domain.Budget, error) {
	out, err := c.budgets.Update(ctx, id, upd)
	if err != nil {
		return domain.Budget{}, err
	}
	c.bus.Publish(&events.Event{Type: events.BudgetChanged, Module: "budget", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) DeleteBudget(ctx context.Context, id string) error {
	if err := c.budgets.Delete(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(&events.Event{Type: events.BudgetChanged, Module: "budget"})
	c.Trigger()
	return nil
}

func (c *Core) CreateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	out, err := c.goals.Create(ctx, g)
	if err != nil {
		return domain.Goal{}, err
	}
	c.bus.Publish(&events.Event{Type: events.GoalChanged, Module: "goals", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) UpdateGoal(ctx context.Context, id string, upd domain.Goal) (domain.Goal, error) {
	out, err := c.goals.Update(ctx, id, upd)
	if err != nil {
		return domain.Goal{}, err
	}
	c.bus.Publish(&events.Event{Type: events.GoalChanged, Module: "goals", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) DeleteGoal(ctx context.Context, id string) error {
	if err := c.goals.Delete(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(&events.Event{Type: events.GoalChanged, Module: "goals"})
	c.Trigger()
	return nil
}

func (c *Core) AddHolding(ctx context.Context, h domain.Holding) (domain.Holding, error) {
	out, err := c.portfolio.AddHolding(ctx, h)
	if err != nil {
		return domain.Holding{}, err
	}
	c.bus.Publish(&events.Event{Type: events.HoldingChanged, Module: "portfolio", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) UpdateHolding(ctx context.Context, id string, upd domain.Holding) (domain.Holding, error) {
	out, err := c.portfolio.UpdateHolding(ctx, id, upd)
	if err != nil {
		return domain.Holding{}, err
	}
	c.bus.Publish(&events.Event{Type: events.HoldingChanged, Module: "portfolio", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) DeleteHolding(ctx context.Context, id string) error {
	if err := c.portfolio.DeleteHolding(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(&events.Event{Type: events.HoldingChanged, Module: "portfolio"})
	c.Trigger()
	return nil
}

func (c *Core) AddWatchlistItem(ctx context.Context, symbol, name string) (domain.WatchlistItem, error) {
	out, err := c.portfolio.AddWatchlistItem(ctx, symbol, name)
	if err != nil {
		return domain.WatchlistItem{}, err
	}
	c.bus.Publish(&events.Event{Type: events.WatchlistChanged, Module: "portfolio", Data: out})
	c.Trigger()
	return out, nil
}

func (c *Core) DeleteWatchlistItem(ctx context.Context, id string) error {
	if err := c.portfolio.DeleteWatchlistItem(ctx, id); err != nil {
		return err
	}
	c.bus.Publish(&events.Event{Type: events.WatchlistChanged, Module: "portfolio"})
	c.Trigger()
	return nil
}

// MarkAlertRead flips the read flag without triggering a pass; nothing
// derived depends on it.
func (c *Core) MarkAlertRead(ctx context.Context, id string) error {
	return c.alerts.MarkRead(ctx, id)
}
