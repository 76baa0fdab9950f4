// Package events provides the in-process publish/subscribe bus that connects
// the reconciler to the HTTP layer.
package events

import (
	"sync"
	"time"
)

type EventType string

const (
	TransactionChanged EventType = "transaction_changed"
	BudgetChanged      EventType = "budget_changed"
	GoalChanged        EventType = "goal_changed"
	HoldingChanged     EventType = "holding_changed"
	WatchlistChanged   EventType = "watchlist_changed"
	QuotesRefreshed    EventType = "quotes_refreshed"
	SnapshotPublished  EventType = "snapshot_published"
	AlertRaised        EventType = "alert_raised"
)

type Event struct {
	Type      EventType   `json:"type"`
	Module    string      `json:"module"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Handler func(*Event)

// Bus fans events out to subscribers. Handlers run synchronously on the
// publisher's goroutine, so they must be quick and must not publish back
// into the bus.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType]map[int]Handler
	all      map[int]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType]map[int]Handler),
		all:      make(map[int]Handler),
	}
}

// Subscribe registers a handler for one event type and returns a function
// that removes it again.
func (b *Bus) Subscribe(t EventType, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[t] == nil {
		b.handlers[t] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[t][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[t], id)
	}
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.all[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers the event to all matching handlers. The timestamp is
// stamped here if the caller left it zero.
func (b *Bus) Publish(e *Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	typed := make([]Handler, 0, len(b.handlers[e.Type]))
	for _, h := range b.handlers[e.Type] {
		typed = append(typed, h)
	}
	all := make([]Handler, 0, len(b.all))
	for _, h := range b.all {
		all = append(all, h)
	}
	b.mu.RUnlock()

	for _, h := range typed {
		h(e)
	}
	for _, h := range all {
		h(e)
	}
}
