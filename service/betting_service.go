package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"bookline/models"
	"bookline/store"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	backend BackendClient
	store   *store.Store

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewBettingService creates a new betting service
func NewBettingService(backend BackendClient, st *store.Store) BettingService {
	return &bettingService{
		backend:  backend,
		store:    st,
		inFlight: make(map[string]bool),
	}
}

// PlaceWager runs the placement flow: idle -> submitting -> accepted or
// rejected. While a selection is submitting, a second submission for the
// same selection is refused. Acceptance triggers an authoritative wallet
// re-fetch; the new balance is never computed locally. Rejection surfaces
// the backend's message and leaves the wallet untouched. There is no
// automatic retry: the user re-initiates.
func (s *bettingService) PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error) {
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}

	key := ticket.SelectionKey()
	s.mu.Lock()
	if s.inFlight[key] {
		s.mu.Unlock()
		return nil, fmt.Errorf("a wager for this selection is already being placed")
	}
	s.inFlight[key] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	receipt, err := s.backend.PlaceWager(ctx, ticket)
	if err != nil {
		log.WithFields(log.Fields{
			"matchId":  ticket.MatchID,
			"runnerId": ticket.RunnerID,
			"error":    err,
		}).Warn("Wager rejected")
		return nil, err
	}

	s.store.UpsertWager(receipt)

	// The backend is the sole source of truth for wallet figures after any
	// mutating action. A failed refresh is not a failed placement.
	if _, err := s.RefreshWallet(ctx); err != nil {
		log.WithError(err).Warn("Failed to refresh wallet after placement")
	}

	log.WithFields(log.Fields{
		"wagerId": receipt.ID,
		"matchId": receipt.MatchID,
		"stake":   receipt.Stake,
		"odds":    receipt.Odds,
		"type":    receipt.Type,
	}).Info("Wager accepted")

	return receipt, nil
}

// Submitting reports whether the ticket's selection has a placement in flight
func (s *bettingService) Submitting(ticket models.WagerTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[ticket.SelectionKey()]
}

// RefreshWallet re-reads the authoritative user record into the store
func (s *bettingService) RefreshWallet(ctx context.Context) (*models.User, error) {
	user, err := s.backend.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh wallet: %w", err)
	}
	s.store.SetUser(user)
	return user, nil
}

func validateTicket(t models.WagerTicket) error {
	if t.MatchID == "" || t.MarketID == "" || t.RunnerID == "" {
		return fmt.Errorf("wager selection is incomplete")
	}
	if t.Type != models.WagerTypeBack && t.Type != models.WagerTypeLay {
		return fmt.Errorf("wager type must be BACK or LAY")
	}
	if math.IsNaN(t.Stake) || math.IsInf(t.Stake, 0) || t.Stake <= 0 {
		return fmt.Errorf("stake must be positive")
	}
	if math.IsNaN(t.Odds) || math.IsInf(t.Odds, 0) || t.Odds <= 0 {
		return fmt.Errorf("odds must be positive")
	}
	return nil
}
