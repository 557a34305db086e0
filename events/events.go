package events

import (
	"context"
	"sync"
	"time"

	"bookline/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents the different classes of real-time events
type EventType string

const (
	EventTypeScoreUpdate  EventType = "score_update"
	EventTypeBallEvent    EventType = "ball_event"
	EventTypeMarketUpdate EventType = "market_update"
	EventTypeWagerSettled EventType = "wager_settled"
	EventTypeWalletUpdate EventType = "wallet_update"
)

// Event is the base interface for all normalized events. Key returns the
// subscription scope the event belongs to: "match:<id>" or "user:<id>".
type Event interface {
	Type() EventType
	Key() string
}

// MatchKey builds the subscription key for a match-scoped event
func MatchKey(matchID string) string { return "match:" + matchID }

// UserKey builds the subscription key for a user-scoped event
func UserKey(userID string) string { return "user:" + userID }

// ScoreUpdateEvent carries a partial update to one match's scoring fields
// plus a human-readable score line derived at normalization time.
type ScoreUpdateEvent struct {
	MatchID   string
	Patch     models.MatchPatch
	ScoreLine string
}

func (e ScoreUpdateEvent) Type() EventType { return EventTypeScoreUpdate }
func (e ScoreUpdateEvent) Key() string     { return MatchKey(e.MatchID) }

// BallEvent represents a single delivery with its derived outcome label
type BallEvent struct {
	MatchID    string
	Inning     int
	Over       int
	Ball       int
	BatterRuns int
	ExtraRuns  int
	TotalRuns  int
	ExtraType  string
	IsWicket   bool
	IsBoundary bool
	IsSix      bool
	Outcome    string
}

func (e BallEvent) Type() EventType { return EventTypeBallEvent }
func (e BallEvent) Key() string     { return MatchKey(e.MatchID) }

// MarketUpdateEvent carries the complete list of a match's currently open
// sub-markets. It replaces the displayed market list, never patches it.
type MarketUpdateEvent struct {
	MatchID string
	Markets []models.Market
}

func (e MarketUpdateEvent) Type() EventType { return EventTypeMarketUpdate }
func (e MarketUpdateEvent) Key() string     { return MatchKey(e.MatchID) }

// WagerSettledEvent represents a wager reaching a terminal state
type WagerSettledEvent struct {
	UserID    string
	WagerID   string
	Status    models.WagerStatus
	Profit    float64
	SettledAt time.Time
}

func (e WagerSettledEvent) Type() EventType { return EventTypeWagerSettled }
func (e WagerSettledEvent) Key() string     { return UserKey(e.UserID) }

// WalletUpdateEvent carries authoritative wallet figures from the backend
type WalletUpdateEvent struct {
	UserID   string
	Balance  float64
	Exposure float64
	Currency string
}

func (e WalletUpdateEvent) Type() EventType { return EventTypeWalletUpdate }
func (e WalletUpdateEvent) Key() string     { return UserKey(e.UserID) }

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

type registration struct {
	id int
	fn Handler
}

// Bus manages event subscriptions and dispatching. Delivery is synchronous
// and in registration order: events for one subscription are handled one at a
// time, so no listener ever observes two events for the same scope
// concurrently. Each listener receives every event of its type exactly once.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType][]registration
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]registration),
	}
}

// Subscribe adds a handler for a specific event type and returns an
// unsubscribe handle. The handle is safe to call more than once.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, fn: handler})
	count := len(b.handlers[eventType])
	b.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": count,
	}).Debug("Subscribed handler to event type")

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		regs := b.handlers[eventType]
		for i, r := range regs {
			if r.id == id {
				b.handlers[eventType] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers an event to all registered handlers, synchronously, in
// registration order. A panicking handler is recovered and logged so one bad
// listener cannot take down the channel.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	regs := make([]registration, len(b.handlers[event.Type()]))
	copy(regs, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"key":          event.Key(),
		"handlerCount": len(regs),
	}).Debug("Emitting event to handlers")

	for _, r := range regs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"key":       event.Key(),
						"panic":     rec,
					}).Error("Event handler panicked")
				}
			}()
			r.fn(ctx, event)
		}()
	}
}
