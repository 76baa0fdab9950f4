package reconciler

import (
	"context"
)

// Start loads module state, restores the cached snapshot so reads have data
// before the first pass lands, runs an initial pass, and starts the
// processing loop.
func (c *Core) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	c.mu.Unlock()

	c.ledger.Load(ctx)
	c.budgets.Load(ctx)
	c.goals.Load(ctx)
	c.portfolio.Load(ctx)
	c.alerts.Load(ctx)

	if snap, err := c.loadSnapshotCache(ctx); err == nil {
		c.snapMu.Lock()
		c.snapshot = snap
		c.snapMu.Unlock()
		c.log.Info().Time("cached_at", snap.LastUpdate).Msg("restored cached snapshot")
	}

	c.runPass(ctx)

	c.wg.Add(1)
	go c.loop(ctx)
	c.log.Info().Msg("reconciler started")
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (c *Core) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
	c.log.Info().Msg("reconciler stopped")
}

func (c *Core) loop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-c.trigger:
			c.runPass(ctx)
		}
	}
}
