package ingest

import (
	"context"
	"fmt"
	"sync"

	"bookline/events"
	"bookline/models"
	"bookline/store"

	log "github.com/sirupsen/logrus"
)

// MessageBus abstracts the transport the channel subscribes through. The
// production implementation is NATSClient; tests inject an in-memory fake.
// Subscribe returns an unsubscribe function for the created subscription.
type MessageBus interface {
	Subscribe(subject string, handler func(data []byte)) (func() error, error)
}

// Channel owns one transport subscription set per live match (score, ball and
// market subjects) and one per authenticated user (wager settlement and
// wallet subjects). Inbound payloads are normalized into typed events,
// applied to the store, then fanned out to listeners in arrival order.
type Channel struct {
	transport MessageBus
	store     *store.Store
	bus       *events.Bus

	mu   sync.Mutex
	subs map[string][]func() error
}

// NewChannel creates an ingestion channel over the given transport
func NewChannel(transport MessageBus, st *store.Store, bus *events.Bus) *Channel {
	return &Channel{
		transport: transport,
		store:     st,
		bus:       bus,
		subs:      make(map[string][]func() error),
	}
}

// On registers a listener for one event type and returns an unsubscribe
// handle. Multiple listeners per type are supported; each receives every
// event exactly once, one at a time.
func (c *Channel) On(eventType events.EventType, handler events.Handler) func() {
	return c.bus.Subscribe(eventType, handler)
}

// SubscribeToMatch establishes delivery for a match's score, ball and market
// event classes. Idempotent: a second call for a subscribed match is a no-op.
func (c *Channel) SubscribeToMatch(matchID string) error {
	key := events.MatchKey(matchID)
	classes := []eventClass{
		{"score", c.handleScore},
		{"ball", c.handleBall},
		{"market", c.handleMarket},
	}
	return c.subscribe(key, fmt.Sprintf("match.%s", matchID), matchID, classes)
}

// SubscribeToUser establishes delivery for a user's settlement and wallet
// event classes. Mirrors the match subscription lifecycle.
func (c *Channel) SubscribeToUser(userID string) error {
	key := events.UserKey(userID)
	classes := []eventClass{
		{"wager", c.handleWagerSettled},
		{"wallet", c.handleWallet},
	}
	return c.subscribe(key, fmt.Sprintf("user.%s", userID), userID, classes)
}

// eventClass pairs a subject suffix with its payload handler
type eventClass struct {
	suffix string
	handle func(scopeID string, data []byte)
}

func (c *Channel) subscribe(key, subjectBase, scopeID string, classes []eventClass) error {
	c.mu.Lock()
	if _, ok := c.subs[key]; ok {
		c.mu.Unlock()
		return nil
	}
	// Reserve the key so concurrent calls stay idempotent while the
	// transport subscriptions are established outside the lock.
	c.subs[key] = nil
	c.mu.Unlock()

	// Each event class is its own transport subscription, and the transport
	// may run their callbacks concurrently. The subscription unit is the
	// match or user, so dispatch is serialized across all of its classes:
	// no handler or listener ever sees two events for one key at once.
	var dispatchMu sync.Mutex

	var unsubs []func() error
	for _, class := range classes {
		subject := fmt.Sprintf("%s.%s", subjectBase, class.suffix)
		handle := class.handle
		un, err := c.transport.Subscribe(subject, func(data []byte) {
			dispatchMu.Lock()
			defer dispatchMu.Unlock()
			if !c.isActive(key) {
				log.WithField("subject", subject).Debug("Dropping event for inactive subscription")
				return
			}
			handle(scopeID, data)
		})
		if err != nil {
			for _, u := range unsubs {
				_ = u()
			}
			c.mu.Lock()
			delete(c.subs, key)
			c.mu.Unlock()
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		unsubs = append(unsubs, un)
	}

	c.mu.Lock()
	c.subs[key] = unsubs
	c.mu.Unlock()

	log.WithField("key", key).Info("Subscribed to event channel")
	return nil
}

// Unsubscribe tears down delivery for a subscription key ("match:<id>" or
// "user:<id>"). Safe to call for keys that were never subscribed. Delivery
// stops synchronously: once this returns, no listener sees another event for
// the key, even if the transport still has messages in flight.
func (c *Channel) Unsubscribe(key string) {
	c.mu.Lock()
	unsubs, ok := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if !ok {
		return
	}
	for _, un := range unsubs {
		if un == nil {
			continue
		}
		if err := un(); err != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"error": err,
			}).Error("Failed to unsubscribe from transport")
		}
	}
	log.WithField("key", key).Info("Unsubscribed from event channel")
}

// UnsubscribeFromMatch tears down a match subscription
func (c *Channel) UnsubscribeFromMatch(matchID string) {
	c.Unsubscribe(events.MatchKey(matchID))
}

// UnsubscribeFromUser tears down a user subscription
func (c *Channel) UnsubscribeFromUser(userID string) {
	c.Unsubscribe(events.UserKey(userID))
}

// Close tears down every subscription
func (c *Channel) Close() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.subs))
	for key := range c.subs {
		keys = append(keys, key)
	}
	c.mu.Unlock()
	for _, key := range keys {
		c.Unsubscribe(key)
	}
}

func (c *Channel) isActive(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subs[key]
	return ok
}

func (c *Channel) handleScore(matchID string, data []byte) {
	ev := normalizeScore(matchID, data)
	c.store.MergeMatchPatch(matchID, &ev.Patch)
	c.bus.Emit(context.Background(), ev)
}

func (c *Channel) handleBall(matchID string, data []byte) {
	ev := normalizeBall(matchID, data)
	patch := models.MatchPatch{
		CurrentOver: &ev.Over,
		CurrentBall: &ev.Ball,
	}
	if ev.Inning > 0 {
		patch.CurrentInning = &ev.Inning
	}
	c.store.MergeMatchPatch(matchID, &patch)
	c.bus.Emit(context.Background(), ev)
}

func (c *Channel) handleMarket(matchID string, data []byte) {
	ev := normalizeMarkets(matchID, data)
	c.store.ReplaceMatchMarkets(matchID, ev.Markets)
	c.bus.Emit(context.Background(), ev)
}

func (c *Channel) handleWagerSettled(userID string, data []byte) {
	ev := normalizeWagerSettled(userID, data)
	switch ev.Status {
	case models.WagerStatusWon, models.WagerStatusLost, models.WagerStatusVoid:
		c.store.SettleWager(ev.WagerID, ev.Status, ev.Profit, ev.SettledAt)
	default:
		log.WithFields(log.Fields{
			"wagerId": ev.WagerID,
			"status":  ev.Status,
		}).Warn("Settlement event with non-terminal status, mirror not updated")
	}
	c.bus.Emit(context.Background(), ev)
}

func (c *Channel) handleWallet(userID string, data []byte) {
	ev := normalizeWallet(userID, data)
	c.store.SetWallet(ev.Balance, ev.Exposure)
	c.bus.Emit(context.Background(), ev)
}
