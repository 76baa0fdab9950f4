package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhalkiad/compass/internal/config"
	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/events"
	"github.com/mhalkiad/compass/internal/modules/alerts"
	"github.com/mhalkiad/compass/internal/modules/budget"
	"github.com/mhalkiad/compass/internal/modules/goals"
	"github.com/mhalkiad/compass/internal/modules/ledger"
	"github.com/mhalkiad/compass/internal/modules/market"
	"github.com/mhalkiad/compass/internal/modules/portfolio"
	"github.com/mhalkiad/compass/internal/reconciler"
	"github.com/mhalkiad/compass/internal/server"
	"github.com/mhalkiad/compass/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := logger.New(logger.Config{Level: "error"})
		errLog.Fatal().Err(err).Msg("loading config failed")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Str("feed", string(cfg.FeedMode)).Int("port", cfg.Port).Msg("compass starting")

	db, err := database.New(cfg.DataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database failed")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migrating database failed")
	}

	bus := events.NewBus()

	var feed market.Feed
	var wsFeed *market.WSFeed
	switch cfg.FeedMode {
	case config.FeedHTTP:
		feed = market.NewHTTPFeed(cfg.FeedURL, cfg.FeedTimeout, log)
	case config.FeedWS:
		wsFeed = market.NewWSFeed(cfg.FeedURL, log)
		feed = wsFeed
	default:
		feed = market.NewSimFeed(cfg.SimSeed, log)
	}

	core, err := reconciler.New(reconciler.Deps{
		Ledger:    ledger.NewService(ledger.NewRepository(db.DB, log), log),
		Budgets:   budget.NewTracker(budget.NewRepository(db.DB, log), log),
		Goals:     goals.NewTracker(goals.NewRepository(db.DB, log), log),
		Portfolio: portfolio.NewService(portfolio.NewRepository(db.DB, log), log),
		Alerts:    alerts.NewService(alerts.NewRepository(db.DB, log), log),
		Feed:      feed,
		Bus:       bus,
		DB:        db,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building reconciler failed")
	}

	sched, err := reconciler.NewScheduler(core, cfg.SyncInterval, cfg.QuoteInterval, cfg.InsightInterval, log)
	if err != nil {
		log.Fatal().Err(err).Msg("building scheduler failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if wsFeed != nil {
		wsFeed.Start(ctx)
	}
	core.Start(ctx)
	sched.Start()

	srv := server.New(core, bus, db, cfg.Port, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	sched.Stop()
	core.Stop()
	if wsFeed != nil {
		wsFeed.Stop()
	}
	cancel()
	log.Info().Msg("compass stopped")
}
