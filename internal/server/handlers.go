package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mhalkiad/compass/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.HealthCheck(r.Context()); err != nil {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.core.Snapshot())
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := decode(r, &tx); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.AddTransaction(r.Context(), tx)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := decode(r, &tx); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), tx)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.core.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b domain.Budget
	if err := decode(r, &b); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.CreateBudget(r.Context(), b)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.core.BudgetStatus(chi.URLParam(r, "category")))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b domain.Budget
	if err := decode(r, &b); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.UpdateBudget(r.Context(), chi.URLParam(r, "id"), b)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.core.DeleteBudget(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if err := decode(r, &g); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.CreateGoal(r.Context(), g)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if err := decode(r, &g); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.UpdateGoal(r.Context(), chi.URLParam(r, "id"), g)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.core.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var h domain.Holding
	if err := decode(r, &h); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.AddHolding(r.Context(), h)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	var h domain.Holding
	if err := decode(r, &h); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.UpdateHolding(r.Context(), chi.URLParam(r, "id"), h)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := s.core.DeleteHolding(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddWatchlistItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := decode(r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	out, err := s.core.AddWatchlistItem(r.Context(), body.Symbol, body.Name)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDeleteWatchlistItem(w http.ResponseWriter, r *http.Request) {
	if err := s.core.DeleteWatchlistItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if err := s.core.MarkAlertRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	data, err := s.core.Export()
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.Header().Set("Content-Disposition", `attachment; filename="compass-export.msgpack"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("writing export failed")
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		s.respondError(w, err)
		return
	}
	imported, skipped, err := s.core.Import(r.Context(), data)
	if err != nil {
		s.respondError(w, &domain.ValidationError{Field: "archive", Reason: err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"imported": imported, "skipped": skipped})
}
