package store

import (
	"sync"
	"time"

	"bookline/models"

	log "github.com/sirupsen/logrus"
)

// Store holds the canonical match, market and runner state for a client
// session, plus the local mirrors of the user's wallet and wagers. Every
// write is atomic with respect to readers; writes that target an unknown
// match, market or runner are counted no-ops, because the real-time channel
// may race ahead of or behind a snapshot fetch.
//
// Concurrent writers are resolved last-write-wins. The store never reconciles
// timestamps: a snapshot fetch and a live patch may arrive in either order and
// whichever applies last sticks. Financial outcomes are re-validated by the
// backend at placement and settlement time, so eventual consistency is enough
// here.
type Store struct {
	mu      sync.RWMutex
	matches map[string]*models.Match
	order   []string // match ids in the order delivered by the last snapshot
	user    *models.User
	wagers  map[string]*models.Wager

	droppedWrites int64

	subMu   sync.Mutex
	subs    map[int]func(matchID string)
	nextSub int
}

// NewStore creates an empty store. Stores are constructed explicitly and
// injected so tests and independent consumers can hold isolated instances.
func NewStore() *Store {
	return &Store{
		matches: make(map[string]*models.Match),
		wagers:  make(map[string]*models.Wager),
		subs:    make(map[int]func(matchID string)),
	}
}

// Subscribe registers a callback invoked with the match id after any match
// write (the id is empty for a full snapshot replacement). Returns an
// unsubscribe handle. Callbacks run synchronously after the write lock is
// released, so they may read the store freely.
func (s *Store) Subscribe(fn func(matchID string)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(matchID string) {
	s.subMu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(matchID)
	}
}

// SetMatches replaces the full known match set, used after a snapshot fetch.
// The input is deep-copied; callers keep ownership of what they pass in.
func (s *Store) SetMatches(matches []*models.Match) {
	s.mu.Lock()
	s.matches = make(map[string]*models.Match, len(matches))
	s.order = make([]string, 0, len(matches))
	for _, m := range matches {
		if m == nil || m.ID == "" {
			continue
		}
		s.matches[m.ID] = m.Clone()
		s.order = append(s.order, m.ID)
	}
	s.mu.Unlock()
	s.notify("")
}

// MergeMatchPatch applies a partial update to one match's scalar fields. The
// markets list is preserved unless the patch explicitly carries one. Status
// never regresses: UPCOMING -> LIVE -> FINISHED is the only direction, and a
// FINISHED match stays finished.
func (s *Store) MergeMatchPatch(matchID string, patch *models.MatchPatch) {
	if patch == nil {
		return
	}
	s.mu.Lock()
	m, ok := s.matches[matchID]
	if !ok {
		s.droppedWrites++
		s.mu.Unlock()
		log.WithField("matchId", matchID).Debug("Dropping patch for unknown match")
		return
	}
	applyPatch(m, patch)
	s.mu.Unlock()
	s.notify(matchID)
}

func applyPatch(m *models.Match, p *models.MatchPatch) {
	if p.Sport != nil {
		m.Sport = *p.Sport
	}
	if p.League != nil {
		m.League = *p.League
	}
	if p.Tournament != nil {
		m.Tournament = *p.Tournament
	}
	if p.HomeTeam != nil {
		m.HomeTeam = *p.HomeTeam
	}
	if p.AwayTeam != nil {
		m.AwayTeam = *p.AwayTeam
	}
	if p.StartTime != nil {
		m.StartTime = *p.StartTime
	}
	if p.Status != nil && p.Status.Rank() > m.Status.Rank() {
		m.Status = *p.Status
	}
	if p.Runs != nil {
		m.Runs = *p.Runs
	}
	if p.Wickets != nil {
		m.Wickets = *p.Wickets
	}
	if p.Overs != nil {
		m.Overs = *p.Overs
	}
	if p.CurrentOver != nil {
		m.CurrentOver = *p.CurrentOver
	}
	if p.CurrentBall != nil {
		m.CurrentBall = *p.CurrentBall
	}
	if p.CurrentInning != nil {
		m.CurrentInning = *p.CurrentInning
	}
	if p.TargetRuns != nil {
		m.TargetRuns = *p.TargetRuns
	}
	if p.BattingTeam != nil {
		m.BattingTeam = *p.BattingTeam
	}
	if p.BowlingTeam != nil {
		m.BowlingTeam = *p.BowlingTeam
	}
	if p.TossWinner != nil {
		m.TossWinner = *p.TossWinner
	}
	if p.TossDecision != nil {
		m.TossDecision = *p.TossDecision
	}
	if p.ScoreSummary != nil {
		m.ScoreSummary = *p.ScoreSummary
	}
	if p.Markets != nil {
		m.Markets = models.CloneMarkets(p.Markets)
	}
}

// ReplaceMatchMarkets swaps a match's entire market list. Market-update
// events carry complete snapshots of the open sub-markets, never diffs, so
// replacement is the only correct application.
func (s *Store) ReplaceMatchMarkets(matchID string, markets []models.Market) {
	s.mu.Lock()
	m, ok := s.matches[matchID]
	if !ok {
		s.droppedWrites++
		s.mu.Unlock()
		log.WithField("matchId", matchID).Debug("Dropping market list for unknown match")
		return
	}
	m.Markets = models.CloneMarkets(markets)
	s.mu.Unlock()
	s.notify(matchID)
}

// ReplaceMarketRunners replaces one market's runner list wholesale
func (s *Store) ReplaceMarketRunners(matchID, marketID string, runners []models.Runner) {
	s.mu.Lock()
	mkt := s.lookupMarket(matchID, marketID)
	if mkt == nil {
		s.droppedWrites++
		s.mu.Unlock()
		log.WithFields(log.Fields{
			"matchId":  matchID,
			"marketId": marketID,
		}).Debug("Dropping runner list for unknown market")
		return
	}
	mkt.Runners = models.CloneRunners(runners)
	s.mu.Unlock()
	s.notify(matchID)
}

// UpdateRunnerOdds mutates a single runner's prices in place. Nil odds mean
// the corresponding side has no market and wagering on it is disabled.
func (s *Store) UpdateRunnerOdds(matchID, marketID, runnerID string, back, lay *float64) {
	s.mu.Lock()
	mkt := s.lookupMarket(matchID, marketID)
	if mkt == nil {
		s.droppedWrites++
		s.mu.Unlock()
		return
	}
	found := false
	for i := range mkt.Runners {
		if mkt.Runners[i].ID == runnerID {
			r := &mkt.Runners[i]
			r.BackOdds = copyOdds(back)
			r.LayOdds = copyOdds(lay)
			found = true
			break
		}
	}
	if !found {
		s.droppedWrites++
		s.mu.Unlock()
		log.WithFields(log.Fields{
			"matchId":  matchID,
			"marketId": marketID,
			"runnerId": runnerID,
		}).Debug("Dropping odds update for unknown runner")
		return
	}
	s.mu.Unlock()
	s.notify(matchID)
}

func copyOdds(v *float64) *float64 {
	if !models.Finite(v) {
		return nil
	}
	c := *v
	return &c
}

// lookupMarket must be called with the write lock held
func (s *Store) lookupMarket(matchID, marketID string) *models.Market {
	m, ok := s.matches[matchID]
	if !ok {
		return nil
	}
	for i := range m.Markets {
		if m.Markets[i].ID == marketID {
			return &m.Markets[i]
		}
	}
	return nil
}

// Match returns a deep copy of one match, or nil if unknown
func (s *Store) Match(matchID string) *models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matches[matchID].Clone()
}

// Matches returns deep copies of all matches in snapshot order
func (s *Store) Matches() []*models.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Match, 0, len(s.order))
	for _, id := range s.order {
		if m, ok := s.matches[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out
}

// SetUser replaces the wallet mirror with an authoritative backend read
func (s *Store) SetUser(u *models.User) {
	s.mu.Lock()
	s.user = u.Clone()
	s.mu.Unlock()
}

// SetWallet updates only the wallet figures, from a wallet-update event
func (s *Store) SetWallet(balance, exposure float64) {
	s.mu.Lock()
	if s.user == nil {
		s.droppedWrites++
		s.mu.Unlock()
		return
	}
	s.user.Balance = balance
	s.user.Exposure = exposure
	s.mu.Unlock()
}

// User returns a copy of the wallet mirror, or nil before the first read
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// UpsertWager mirrors a wager record owned by the backend
func (s *Store) UpsertWager(w *models.Wager) {
	if w == nil || w.ID == "" {
		return
	}
	s.mu.Lock()
	s.wagers[w.ID] = w.Clone()
	s.mu.Unlock()
}

// SettleWager applies a settlement event to a mirrored wager. Only status,
// profit and settledAt may change; odds and stake are immutable snapshots
// taken at placement. Settling an unknown wager is a counted no-op.
func (s *Store) SettleWager(wagerID string, status models.WagerStatus, profit float64, settledAt time.Time) {
	s.mu.Lock()
	w, ok := s.wagers[wagerID]
	if !ok {
		s.droppedWrites++
		s.mu.Unlock()
		log.WithField("wagerId", wagerID).Debug("Dropping settlement for unknown wager")
		return
	}
	w.Status = status
	w.PotentialProfit = profit
	t := settledAt
	w.SettledAt = &t
	s.mu.Unlock()
}

// Wager returns a copy of one mirrored wager, or nil if unknown
func (s *Store) Wager(wagerID string) *models.Wager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wagers[wagerID].Clone()
}

// Wagers returns copies of all mirrored wagers
func (s *Store) Wagers() []*models.Wager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Wager, 0, len(s.wagers))
	for _, w := range s.wagers {
		out = append(out, w.Clone())
	}
	return out
}

// DroppedWrites reports how many writes targeted unknown entities and were
// silently dropped. Exposed for observability only.
func (s *Store) DroppedWrites() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.droppedWrites
}
