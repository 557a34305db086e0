package service

import (
	"context"
	"time"

	"bookline/models"
	"bookline/store"

	log "github.com/sirupsen/logrus"
)

// SnapshotPoller periodically re-fetches the full match snapshot as a
// correctness backstop independent of the real-time channel. Under the
// store's last-write-wins contract it also heals any state a dropped or
// misordered event left behind.
type SnapshotPoller struct {
	backend  BackendClient
	store    *store.Store
	interval time.Duration

	// OnSnapshot, when set, is called with each successfully applied
	// snapshot. The wiring layer uses it to align channel subscriptions
	// with the set of live matches.
	OnSnapshot func(matches []*models.Match)
}

// NewSnapshotPoller creates a poller with the given interval
func NewSnapshotPoller(backend BackendClient, st *store.Store, interval time.Duration) *SnapshotPoller {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &SnapshotPoller{
		backend:  backend,
		store:    st,
		interval: interval,
	}
}

// Run polls until the context is cancelled. An initial poll happens
// immediately. Poll failures are logged and skipped, never fatal.
func (p *SnapshotPoller) Run(ctx context.Context) {
	log.WithField("interval", p.interval).Info("Starting snapshot poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping snapshot poller")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce performs one snapshot fetch and applies it to the store. A result
// arriving after the context was cancelled is discarded: the consumer that
// wanted it has been torn down.
func (p *SnapshotPoller) PollOnce(ctx context.Context) {
	matches, err := p.backend.GetCurrentMatches(ctx)
	if err != nil {
		log.WithError(err).Error("Snapshot fetch failed")
		return
	}
	if ctx.Err() != nil {
		log.Debug("Discarding snapshot fetched after shutdown")
		return
	}

	p.store.SetMatches(matches)
	log.WithField("matches", len(matches)).Debug("Applied match snapshot")

	if p.OnSnapshot != nil {
		p.OnSnapshot(matches)
	}
}
