package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bookline/client"
	"bookline/markets"
	"bookline/models"
	"bookline/service"
	"bookline/store"

	"github.com/go-chi/chi/v5"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store   *store.Store
	betting service.BettingService
}

// NewHandler creates a new handler
func NewHandler(st *store.Store, betting service.BettingService) *Handler {
	return &Handler{store: st, betting: betting}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "bookline",
	})
}

// matchView is a match plus the derived display fields the card renders:
// the toss line, a countdown for upcoming matches, and the over/chase
// figures for live ones.
type matchView struct {
	*models.Match
	TossLine     string `json:"tossLine,omitempty"`
	StartsIn     string `json:"startsIn,omitempty"`
	OverDisplay  string `json:"overDisplay,omitempty"`
	RunsToTarget int    `json:"runsToTarget,omitempty"`
}

func viewOf(m *models.Match) matchView {
	v := matchView{Match: m, TossLine: markets.TossLine(m)}
	switch {
	case m.Status == models.MatchStatusUpcoming:
		v.StartsIn = markets.TimeUntilStart(m.StartTime, time.Now())
	case m.IsLive():
		v.OverDisplay = markets.FormatOver(m.CurrentOver, m.CurrentBall)
		v.RunsToTarget = markets.RunsToTarget(m)
	}
	return v
}

// ListMatches returns all known matches in snapshot order
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matchList := h.store.Matches()
	views := make([]matchView, 0, len(matchList))
	for _, m := range matchList {
		views = append(views, viewOf(m))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetMatch returns one match with its derived display fields
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	match := h.store.Match(chi.URLParam(r, "matchID"))
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found")
		return
	}
	respondJSON(w, http.StatusOK, viewOf(match))
}

// GetPrimaryMarket returns the market the match card highlights for quick
// wagering. 404 when no market matches any heuristic tier; the UI renders
// "odds unavailable", never an error state.
func (h *Handler) GetPrimaryMarket(w http.ResponseWriter, r *http.Request) {
	match := h.store.Match(chi.URLParam(r, "matchID"))
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found")
		return
	}
	primary := markets.SelectPrimaryMarket(match.Markets, match.Sport)
	if primary == nil {
		respondError(w, http.StatusNotFound, "no market available")
		return
	}
	respondJSON(w, http.StatusOK, primary)
}

// quoteRequest accepts stake and odds as numbers or strings: the stake field
// arrives straight from a text input.
type quoteRequest struct {
	Type  models.WagerType `json:"type"`
	Odds  json.RawMessage  `json:"odds"`
	Stake json.RawMessage  `json:"stake"`
}

type quoteResponse struct {
	PotentialProfit float64 `json:"potentialProfit"`
	Liability       float64 `json:"liability"`
}

// QuoteWager computes display economics for a prospective wager. Unparseable
// input quotes as zero; this endpoint never rejects.
func (h *Handler) QuoteWager(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	q := markets.QuoteWager(req.Type, looseNumber(req.Odds), looseNumber(req.Stake))
	respondJSON(w, http.StatusOK, quoteResponse{
		PotentialProfit: markets.RoundDisplay(q.PotentialProfit),
		Liability:       markets.RoundDisplay(q.Liability),
	})
}

// PlaceWager submits a wager ticket. Backend rejections come back with the
// backend's message and a 4xx status; the wallet is untouched on rejection.
func (h *Handler) PlaceWager(w http.ResponseWriter, r *http.Request) {
	var ticket models.WagerTicket
	if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	receipt, err := h.betting.PlaceWager(r.Context(), ticket)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if apiErr, ok := err.(*client.APIError); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}

// ListWagers returns the mirrored wager records
func (h *Handler) ListWagers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Wagers())
}

// GetCurrentUser returns the wallet mirror
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := h.store.User()
	if user == nil {
		respondError(w, http.StatusNotFound, "no user session")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// looseNumber parses a raw JSON value that may be a number, a numeric
// string, or garbage. Garbage parses as 0 so wager math never sees NaN.
func looseNumber(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	if s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return 0
		}
		return markets.ParseStake(unquoted)
	}
	return markets.ParseStake(s)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
