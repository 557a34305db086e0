package models

import (
	"fmt"
	"time"
)

// WagerType distinguishes backing an outcome from laying against it
type WagerType string

const (
	WagerTypeBack WagerType = "BACK"
	WagerTypeLay  WagerType = "LAY"
)

// WagerStatus represents the settlement state of a wager
type WagerStatus string

const (
	WagerStatusOpen WagerStatus = "OPEN"
	WagerStatusWon  WagerStatus = "WON"
	WagerStatusLost WagerStatus = "LOST"
	WagerStatusVoid WagerStatus = "VOID"
)

// Wager represents a placed wager. Odds and stake are snapshots taken at
// placement time and are never recomputed; only status, settledAt and profit
// change afterwards, driven by settlement events from the backend.
type Wager struct {
	ID              string      `json:"id"`
	MatchID         string      `json:"matchId"`
	MarketID        string      `json:"marketId"`
	RunnerID        string      `json:"runnerId"`
	RunnerName      string      `json:"runnerName"`
	Type            WagerType   `json:"type"`
	Odds            float64     `json:"odds"`
	Stake           float64     `json:"stake"`
	PotentialProfit float64     `json:"potentialProfit"`
	Status          WagerStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	SettledAt       *time.Time  `json:"settledAt,omitempty"`
}

// IsSettled checks if the wager has reached a terminal state
func (w *Wager) IsSettled() bool {
	return w.Status != WagerStatusOpen
}

// Clone returns a copy of the wager
func (w *Wager) Clone() *Wager {
	if w == nil {
		return nil
	}
	c := *w
	if w.SettledAt != nil {
		t := *w.SettledAt
		c.SettledAt = &t
	}
	return &c
}

// WagerTicket is the user's selection plus stake, handed to the placement
// operation. Odds are the decimal price the user saw when selecting.
type WagerTicket struct {
	MatchID    string    `json:"matchId"`
	MarketID   string    `json:"marketId"`
	RunnerID   string    `json:"runnerId"`
	RunnerName string    `json:"runnerName"`
	Type       WagerType `json:"type"`
	Odds       float64   `json:"odds"`
	Stake      float64   `json:"stake"`
}

// SelectionKey identifies the UI selection a ticket belongs to. Two tickets
// for the same runner and side share a key, which is what the duplicate
// submission guard locks on.
func (t WagerTicket) SelectionKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", t.MatchID, t.MarketID, t.RunnerID, t.Type)
}
