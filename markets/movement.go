package markets

import (
	"sync"
	"time"

	"bookline/models"

	log "github.com/sirupsen/logrus"
)

// Direction classifies how a runner's back odds moved between two snapshots
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DetectMovement compares two snapshots of a match, each reduced to its
// primary market with the same selector, and returns runnerId -> direction
// for every runner present in both whose back odds are finite on both sides
// and differ. Runners are matched by id, never by position: market runner
// order is not stable across snapshots. Unchanged runners are omitted.
func DetectMovement(prev, curr *models.Match) map[string]Direction {
	deltas := make(map[string]Direction)
	if prev == nil || curr == nil {
		return deltas
	}
	prevMarket := SelectPrimaryMarket(prev.Markets, prev.Sport)
	currMarket := SelectPrimaryMarket(curr.Markets, curr.Sport)
	if prevMarket == nil || currMarket == nil {
		return deltas
	}

	prevOdds := make(map[string]float64, len(prevMarket.Runners))
	for _, r := range prevMarket.Runners {
		if r.HasBack() {
			prevOdds[r.ID] = *r.BackOdds
		}
	}
	for _, r := range currMarket.Runners {
		if !r.HasBack() {
			continue
		}
		before, ok := prevOdds[r.ID]
		if !ok {
			continue
		}
		switch {
		case *r.BackOdds > before:
			deltas[r.ID] = DirectionUp
		case *r.BackOdds < before:
			deltas[r.ID] = DirectionDown
		}
	}
	return deltas
}

// MonitorConfig controls the movement monitor's timing. Zero values take the
// reference defaults.
type MonitorConfig struct {
	// FlashWindow is how long a detected change set stays visible
	FlashWindow time.Duration
	// PulseInterval is how often the attention pulse fires
	PulseInterval time.Duration
	// PulseDuration is how long each attention pulse lasts
	PulseDuration time.Duration
}

func (c *MonitorConfig) applyDefaults() {
	if c.FlashWindow <= 0 {
		c.FlashWindow = 500 * time.Millisecond
	}
	if c.PulseInterval <= 0 {
		c.PulseInterval = 10 * time.Second
	}
	if c.PulseDuration <= 0 {
		c.PulseDuration = 650 * time.Millisecond
	}
}

// MovementMonitor turns raw odds deltas into a debounced flash signal: a
// non-empty change set stays visible for the flash window and then clears,
// even if no further events arrive. Independently, an attention pulse fires
// on a fixed interval for all displayed odds whether or not anything changed.
// The two signals are deliberately separate timers; the pulse is a cosmetic
// reminder that the market is live, not a movement indicator.
type MovementMonitor struct {
	cfg MonitorConfig

	mu          sync.Mutex
	flashing    map[string]Direction
	flashTimer  *time.Timer
	pulseActive bool

	done chan struct{}
	once sync.Once
}

// NewMovementMonitor creates a monitor and starts its pulse timer
func NewMovementMonitor(cfg MonitorConfig) *MovementMonitor {
	cfg.applyDefaults()
	m := &MovementMonitor{
		cfg:      cfg,
		flashing: make(map[string]Direction),
		done:     make(chan struct{}),
	}
	go m.pulseLoop()
	return m
}

// Observe feeds a previous/current snapshot pair through the detector. A
// non-empty delta replaces the visible flash set and restarts the window.
func (m *MovementMonitor) Observe(prev, curr *models.Match) map[string]Direction {
	deltas := DetectMovement(prev, curr)
	if len(deltas) == 0 {
		return deltas
	}
	m.mu.Lock()
	m.flashing = deltas
	if m.flashTimer != nil {
		m.flashTimer.Stop()
	}
	m.flashTimer = time.AfterFunc(m.cfg.FlashWindow, m.clearFlash)
	m.mu.Unlock()

	log.WithFields(log.Fields{
		"matchId": curr.ID,
		"runners": len(deltas),
	}).Debug("Odds movement detected")
	return deltas
}

func (m *MovementMonitor) clearFlash() {
	m.mu.Lock()
	m.flashing = make(map[string]Direction)
	m.mu.Unlock()
}

// Flashing returns the currently visible change set, runnerId -> direction.
// Empty outside a flash window.
func (m *MovementMonitor) Flashing() map[string]Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Direction, len(m.flashing))
	for id, d := range m.flashing {
		out[id] = d
	}
	return out
}

// PulseActive reports whether the periodic attention pulse is currently on
func (m *MovementMonitor) PulseActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulseActive
}

func (m *MovementMonitor) pulseLoop() {
	ticker := time.NewTicker(m.cfg.PulseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.pulseActive = true
			m.mu.Unlock()
			select {
			case <-m.done:
				return
			case <-time.After(m.cfg.PulseDuration):
			}
			m.mu.Lock()
			m.pulseActive = false
			m.mu.Unlock()
		}
	}
}

// Close stops the monitor's timers
func (m *MovementMonitor) Close() {
	m.once.Do(func() {
		close(m.done)
		m.mu.Lock()
		if m.flashTimer != nil {
			m.flashTimer.Stop()
		}
		m.mu.Unlock()
	})
}
