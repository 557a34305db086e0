package service

import (
	"context"

	"bookline/models"
)

// BackendClient defines the interface to the external service layer that
// owns persistence, settlement and wallet state. The engine only mirrors
// what these calls return.
type BackendClient interface {
	// GetCurrentMatches fetches the full live/upcoming match snapshot
	GetCurrentMatches(ctx context.Context) ([]*models.Match, error)

	// GetInstanceMarkets fetches a match's quick-play sub-markets filtered by status
	GetInstanceMarkets(ctx context.Context, matchID string, statuses []models.MarketStatus) ([]models.Market, error)

	// PlaceWager submits a wager and returns the accepted receipt
	PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error)

	// GetCurrentUser fetches the authenticated user with authoritative wallet figures
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// BettingService defines the interface for wager placement operations
type BettingService interface {
	// PlaceWager runs the placement flow for one ticket. On acceptance the
	// wallet mirror is refreshed from the backend; on rejection the error is
	// returned verbatim and the wallet is untouched.
	PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error)

	// Submitting reports whether a placement for the ticket's selection is in flight
	Submitting(ticket models.WagerTicket) bool

	// RefreshWallet re-reads the authoritative wallet into the store
	RefreshWallet(ctx context.Context) (*models.User, error)
}
