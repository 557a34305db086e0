package models

import (
	"time"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	MatchStatusUpcoming MatchStatus = "UPCOMING"
	MatchStatusLive     MatchStatus = "LIVE"
	MatchStatusFinished MatchStatus = "FINISHED"
)

// Rank orders statuses along the allowed transition direction.
// Transitions are monotonic: UPCOMING -> LIVE -> FINISHED.
func (s MatchStatus) Rank() int {
	switch s {
	case MatchStatusUpcoming:
		return 0
	case MatchStatusLive:
		return 1
	case MatchStatusFinished:
		return 2
	}
	return -1
}

// Match represents a single fixture with its live scoring state and markets
type Match struct {
	ID         string      `json:"id"`
	Sport      string      `json:"sport"`
	League     string      `json:"league"`
	Tournament string      `json:"tournament"`
	HomeTeam   string      `json:"homeTeam"`
	AwayTeam   string      `json:"awayTeam"`
	HomeBanner string      `json:"homeBanner,omitempty"`
	AwayBanner string      `json:"awayBanner,omitempty"`
	StartTime  time.Time   `json:"startTime"`
	Status     MatchStatus `json:"status"`

	// Live scoring fields (cricket)
	Runs          int     `json:"runs"`
	Wickets       int     `json:"wickets"`
	Overs         float64 `json:"overs"`
	CurrentOver   int     `json:"currentOver"`
	CurrentBall   int     `json:"currentBall"`
	CurrentInning int     `json:"currentInning"`
	TargetRuns    int     `json:"targetRuns"`
	BattingTeam   string  `json:"battingTeam"`
	BowlingTeam   string  `json:"bowlingTeam"`

	TossWinner   string `json:"tossWinner,omitempty"`
	TossDecision string `json:"tossDecision,omitempty"`

	ScoreSummary string    `json:"scoreSummary,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Markets []Market `json:"markets"`
}

// IsLive checks if the match is currently in play
func (m *Match) IsLive() bool {
	return m.Status == MatchStatusLive
}

// IsFinished checks if the match has ended
func (m *Match) IsFinished() bool {
	return m.Status == MatchStatusFinished
}

// Clone returns a deep copy of the match, including markets and runner odds
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Markets = CloneMarkets(m.Markets)
	return &c
}

// MatchPatch is a partial update to a match's scalar fields. Nil fields are
// left untouched by a merge. Markets is only applied when non-nil.
type MatchPatch struct {
	Sport      *string      `json:"sport,omitempty"`
	League     *string      `json:"league,omitempty"`
	Tournament *string      `json:"tournament,omitempty"`
	HomeTeam   *string      `json:"homeTeam,omitempty"`
	AwayTeam   *string      `json:"awayTeam,omitempty"`
	StartTime  *time.Time   `json:"startTime,omitempty"`
	Status     *MatchStatus `json:"status,omitempty"`

	Runs          *int     `json:"runs,omitempty"`
	Wickets       *int     `json:"wickets,omitempty"`
	Overs         *float64 `json:"overs,omitempty"`
	CurrentOver   *int     `json:"currentOver,omitempty"`
	CurrentBall   *int     `json:"currentBall,omitempty"`
	CurrentInning *int     `json:"currentInning,omitempty"`
	TargetRuns    *int     `json:"targetRuns,omitempty"`
	BattingTeam   *string  `json:"battingTeam,omitempty"`
	BowlingTeam   *string  `json:"bowlingTeam,omitempty"`

	TossWinner   *string `json:"tossWinner,omitempty"`
	TossDecision *string `json:"tossDecision,omitempty"`

	ScoreSummary *string `json:"scoreSummary,omitempty"`

	Markets []Market `json:"markets,omitempty"`
}
