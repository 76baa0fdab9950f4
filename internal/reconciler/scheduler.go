package reconciler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler drives the periodic triggers: a full pass on the sync interval,
// and extra passes on the quote and insight cadences. All three funnel into
// the same coalescing trigger, so overlapping schedules cost nothing.
type Scheduler struct {
	cron *cron.Cron
	core *Core
	log  zerolog.Logger
}

func NewScheduler(core *Core, syncEvery, quoteEvery, insightEvery time.Duration, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		core: core,
		log:  logger.With().Str("component", "scheduler").Logger(),
	}

	cadences := map[string]time.Duration{
		"sync":    syncEvery,
		"quote":   quoteEvery,
		"insight": insightEvery,
	}
	for name, every := range cadences {
		if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", every), core.Trigger); err != nil {
			return nil, fmt.Errorf("scheduling %s trigger: %w", name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts scheduling and waits for any running trigger callbacks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}
