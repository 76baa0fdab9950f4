// Package server exposes the reconciler over HTTP: a JSON API for mutations
// and reads, and a server-sent-events stream for live snapshot pushes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/database"
	"github.com/mhalkiad/compass/internal/events"
	"github.com/mhalkiad/compass/internal/reconciler"
)

type Server struct {
	core *reconciler.Core
	bus  *events.Bus
	db   *database.DB
	http *http.Server
	log  zerolog.Logger
}

func New(core *reconciler.Core, bus *events.Bus, db *database.DB, port int, logger zerolog.Logger) *Server {
	s := &Server{
		core: core,
		bus:  bus,
		db:   db,
		log:  logger.With().Str("component", "server").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/snapshot/stream", s.handleSnapshotStream)

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", s.handleAddTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
		r.Route("/budgets", func(r chi.Router) {
			r.Post("/", s.handleCreateBudget)
			r.Get("/{category}/status", s.handleBudgetStatus)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})
		r.Route("/goals", func(r chi.Router) {
			r.Post("/", s.handleCreateGoal)
			r.Put("/{id}", s.handleUpdateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
		})
		r.Route("/holdings", func(r chi.Router) {
			r.Post("/", s.handleAddHolding)
			r.Put("/{id}", s.handleUpdateHolding)
			r.Delete("/{id}", s.handleDeleteHolding)
		})
		r.Route("/watchlist", func(r chi.Router) {
			r.Post("/", s.handleAddWatchlistItem)
			r.Delete("/{id}", s.handleDeleteWatchlistItem)
		})
		r.Post("/alerts/{id}/read", s.handleMarkAlertRead)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
