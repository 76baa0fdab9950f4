package alerts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mhalkiad/compass/internal/domain"
)

// Service owns the alert log. An alert is raised at most once per
// (type, subject, calendar period) while its condition holds; when the
// condition clears and later trips again, a fresh alert fires even within
// the same period.
type Service struct {
	mu     sync.Mutex
	alerts map[string]domain.Alert
	active map[dedupKey]string // key -> period of the live alert

	repo *Repository
	log  zerolog.Logger
}

type dedupKey struct {
	typ     domain.AlertType
	subject string
}

func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{
		alerts: make(map[string]domain.Alert),
		active: make(map[dedupKey]string),
		repo:   repo,
		log:    logger.With().Str("service", "alerts").Logger(),
	}
}

// Load restores the alert log and rebuilds the dedup state from the newest
// alert per (type, subject). The next pass clears entries whose conditions
// no longer hold.
func (s *Service) Load(ctx context.Context) {
	rows, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading alerts failed, starting empty")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.alerts[row.alert.ID] = row.alert
		s.active[dedupKey{row.alert.Type, row.subject}] = row.period
	}
	s.log.Info().Int("count", len(rows)).Msg("alerts loaded")
}

// Observe reports the current truth of one condition and raises an alert on
// a deduplicated rising edge. Returns the alert and true when one was
// raised.
func (s *Service) Observe(ctx context.Context, typ domain.AlertType, subject string, firing bool, title, message string, now time.Time) (domain.Alert, bool) {
	key := dedupKey{typ, subject}
	period := domain.PeriodOf(now).String()

	s.mu.Lock()
	if !firing {
		delete(s.active, key)
		s.mu.Unlock()
		return domain.Alert{}, false
	}
	if livePeriod, ok := s.active[key]; ok && livePeriod == period {
		s.mu.Unlock()
		return domain.Alert{}, false
	}

	alert := domain.Alert{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: now,
	}
	s.alerts[alert.ID] = alert
	s.active[key] = period
	s.mu.Unlock()

	if err := s.repo.Insert(ctx, alert, subject, period); err != nil {
		s.log.Error().Err(err).Str("id", alert.ID).Msg("persisting alert failed")
	}
	s.log.Info().Str("type", string(typ)).Str("subject", subject).Msg("alert raised")
	return alert, true
}

// MarkRead flags one alert as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	a, ok := s.alerts[id]
	if !ok {
		s.mu.Unlock()
		return &domain.NotFoundError{Entity: "alert", ID: id}
	}
	a.IsRead = true
	s.alerts[id] = a
	s.mu.Unlock()

	if err := s.repo.MarkRead(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("persisting read flag failed")
	}
	return nil
}

// All returns the log newest first.
func (s *Service) All() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
