package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mhalkiad/compass/internal/domain"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encoding response failed")
	}
}

// respondError maps domain errors onto status codes: rejected input is 400,
// unknown ids are 404, budget collisions are 409, everything else is 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var (
		verr *domain.ValidationError
		nf   *domain.NotFoundError
		dup  *domain.DuplicateBudgetError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &dup):
		status = http.StatusConflict
	default:
		s.log.Error().Err(err).Msg("request failed")
	}
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "malformed json"}
	}
	return nil
}
