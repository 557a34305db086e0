package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MarketStatus represents the state of a market
type MarketStatus string

const (
	MarketStatusOpen      MarketStatus = "OPEN"
	MarketStatusSuspended MarketStatus = "SUSPENDED"
	MarketStatusClosed    MarketStatus = "CLOSED"
)

// Market represents a single wagerable market within a match
type Market struct {
	ID      string       `json:"id"`
	MatchID string       `json:"matchId"`
	Name    string       `json:"name"`
	Status  MarketStatus `json:"status"`
	Runners []Runner     `json:"runners"`
}

// IsOpen checks if the market accepts wagers
func (m *Market) IsOpen() bool {
	return m.Status == MarketStatusOpen
}

// Clone returns a deep copy of the market
func (m *Market) Clone() Market {
	c := *m
	c.Runners = CloneRunners(m.Runners)
	return c
}

// CloneMarkets deep-copies a market slice
func CloneMarkets(markets []Market) []Market {
	if markets == nil {
		return nil
	}
	out := make([]Market, len(markets))
	for i := range markets {
		out[i] = markets[i].Clone()
	}
	return out
}

// Runner represents a selectable outcome within a market. A nil odds pointer
// means no market exists on that side and wagering on it is disabled.
type Runner struct {
	ID       string   `json:"id"`
	MarketID string   `json:"marketId"`
	Name     string   `json:"name"`
	BackOdds *float64 `json:"backOdds,omitempty"`
	LayOdds  *float64 `json:"layOdds,omitempty"`
	Volume   float64  `json:"volume"`
}

// HasBack checks if the runner has a priced back side
func (r *Runner) HasBack() bool {
	return Finite(r.BackOdds)
}

// HasLay checks if the runner has a priced lay side
func (r *Runner) HasLay() bool {
	return Finite(r.LayOdds)
}

// Clone returns a copy of the runner with its own odds pointers
func (r *Runner) Clone() Runner {
	c := *r
	c.BackOdds = cloneFloat(r.BackOdds)
	c.LayOdds = cloneFloat(r.LayOdds)
	return c
}

// CloneRunners deep-copies a runner slice
func CloneRunners(runners []Runner) []Runner {
	if runners == nil {
		return nil
	}
	out := make([]Runner, len(runners))
	for i := range runners {
		out[i] = runners[i].Clone()
	}
	return out
}

// Finite reports whether the odds pointer carries a usable decimal price
func Finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// OddsValue returns a pointer to v, for literal odds in call sites and tests
func OddsValue(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// runnerWire mirrors Runner but keeps odds and volume raw so feeds that send
// numbers as quoted strings still decode.
type runnerWire struct {
	ID       string          `json:"id"`
	MarketID string          `json:"marketId"`
	Name     string          `json:"name"`
	BackOdds json.RawMessage `json:"backOdds"`
	LayOdds  json.RawMessage `json:"layOdds"`
	Volume   json.RawMessage `json:"volume"`
}

// UnmarshalJSON normalizes odds fields from either JSON numbers or numeric
// strings. Anything non-numeric or non-finite decodes to a nil odds pointer.
func (r *Runner) UnmarshalJSON(data []byte) error {
	var w runnerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID = w.ID
	r.MarketID = w.MarketID
	r.Name = w.Name
	r.BackOdds = parseOdds(w.BackOdds)
	r.LayOdds = parseOdds(w.LayOdds)
	if v := parseOdds(w.Volume); v != nil && *v > 0 {
		r.Volume = *v
	} else {
		r.Volume = 0
	}
	return nil
}

// parseOdds extracts a finite float from a raw JSON number or numeric string
func parseOdds(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	s := string(raw)
	if s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return nil
		}
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
