package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookline/events"
	"bookline/models"
)

// Normalization of the raw transport payloads into typed events. Feeds are
// duck-typed and frequently partial: every accessor coerces with a safe
// default (0, false, "") instead of erroring, and a malformed payload still
// yields a deliverable event.

func decodeLoose(data []byte) map[string]any {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]any{}
	}
	return raw
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func asInt(v any) int {
	return int(asFloat(v))
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	case float64:
		return t != 0
	}
	return false
}

// normalizeBall converts a raw ball payload into a BallEvent with its derived
// outcome label.
func normalizeBall(matchID string, data []byte) events.BallEvent {
	raw := decodeLoose(data)
	e := events.BallEvent{
		MatchID:    matchID,
		Inning:     asInt(raw["ro_inning"]),
		Over:       asInt(raw["ro_over"]),
		Ball:       asInt(raw["ro_ball"]),
		BatterRuns: asInt(raw["ro_batsman_runs"]),
		ExtraRuns:  asInt(raw["ro_extra_runs"]),
		ExtraType:  asString(raw["ro_extra_type"]),
		IsWicket:   asBool(raw["ro_is_wicket"]),
		IsBoundary: asBool(raw["ro_is_boundary"]),
		IsSix:      asBool(raw["ro_is_six"]),
	}
	if _, ok := raw["ro_total_runs"]; ok {
		e.TotalRuns = asInt(raw["ro_total_runs"])
	} else {
		e.TotalRuns = e.BatterRuns + e.ExtraRuns
	}
	e.Outcome = ballOutcome(e)
	return e
}

// ballOutcome derives the human-readable label for a delivery. Priority:
// wide > no-ball > wicket > six > boundary > dot > run count.
func ballOutcome(e events.BallEvent) string {
	ext := strings.ToLower(e.ExtraType)
	switch {
	case ext == "wide" || ext == "wd":
		if e.TotalRuns > 1 {
			return "Wd+" + strconv.Itoa(e.TotalRuns)
		}
		return "Wd"
	case ext == "noball" || ext == "no-ball" || ext == "no ball" || ext == "nb":
		if e.TotalRuns > 1 {
			return "Nb+" + strconv.Itoa(e.TotalRuns)
		}
		return "Nb"
	case e.IsWicket:
		return "W"
	case e.IsSix:
		return "6"
	case e.IsBoundary:
		return "4"
	case e.TotalRuns == 0:
		return "0"
	default:
		return strconv.Itoa(e.TotalRuns)
	}
}

// normalizeScore converts a raw score payload into a ScoreUpdateEvent. Only
// fields present in the payload end up in the patch, so a partial update
// never clobbers state it did not carry.
func normalizeScore(matchID string, data []byte) events.ScoreUpdateEvent {
	raw := decodeLoose(data)
	e := events.ScoreUpdateEvent{MatchID: matchID}
	p := &e.Patch

	if v, ok := raw["status"]; ok {
		if st := parseMatchStatus(asString(v)); st != "" {
			p.Status = &st
		}
	}
	if v, ok := raw["runs"]; ok {
		n := asInt(v)
		p.Runs = &n
	}
	if v, ok := raw["wickets"]; ok {
		n := asInt(v)
		p.Wickets = &n
	}
	if v, ok := raw["overs"]; ok {
		f := asFloat(v)
		p.Overs = &f
	}
	if v, ok := raw["current_over"]; ok {
		n := asInt(v)
		p.CurrentOver = &n
	}
	if v, ok := raw["current_ball"]; ok {
		n := asInt(v)
		p.CurrentBall = &n
	}
	if v, ok := raw["current_inning"]; ok {
		n := asInt(v)
		p.CurrentInning = &n
	}
	if v, ok := raw["target_runs"]; ok {
		n := asInt(v)
		p.TargetRuns = &n
	}
	if v, ok := raw["batting_team"]; ok {
		s := asString(v)
		p.BattingTeam = &s
	}
	if v, ok := raw["bowling_team"]; ok {
		s := asString(v)
		p.BowlingTeam = &s
	}
	if v, ok := raw["toss_winner"]; ok {
		s := asString(v)
		p.TossWinner = &s
	}
	if v, ok := raw["toss_decision"]; ok {
		s := asString(v)
		p.TossDecision = &s
	}

	e.ScoreLine = scoreLine(raw)
	if e.ScoreLine != "" {
		s := e.ScoreLine
		p.ScoreSummary = &s
	}
	return e
}

func parseMatchStatus(s string) models.MatchStatus {
	switch strings.ToUpper(s) {
	case "LIVE":
		return models.MatchStatusLive
	case "UPCOMING":
		return models.MatchStatusUpcoming
	case "FINISHED":
		return models.MatchStatusFinished
	}
	return ""
}

// scoreLine prefers the feed's pre-formatted summary; otherwise it joins each
// innings entry as "<team>: <runs>[/<wickets>][ (<overs> ov)]" with " | ",
// skipping innings that have no runs recorded.
func scoreLine(raw map[string]any) string {
	if s := asString(raw["score_summary"]); s != "" {
		return s
	}
	innings, _ := raw["innings"].([]any)
	parts := make([]string, 0, len(innings))
	for _, item := range innings {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if entry["runs"] == nil {
			continue
		}
		seg := fmt.Sprintf("%s: %d", asString(entry["team"]), asInt(entry["runs"]))
		if entry["wickets"] != nil {
			seg += "/" + strconv.Itoa(asInt(entry["wickets"]))
		}
		if entry["overs"] != nil {
			seg += fmt.Sprintf(" (%s ov)", strconv.FormatFloat(asFloat(entry["overs"]), 'f', -1, 64))
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, " | ")
}

// normalizeMarkets converts a raw market-update payload. The payload carries
// the complete list of the match's open sub-markets, not a diff.
func normalizeMarkets(matchID string, data []byte) events.MarketUpdateEvent {
	e := events.MarketUpdateEvent{MatchID: matchID}
	var body struct {
		Markets []models.Market `json:"markets"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Markets != nil {
		e.Markets = body.Markets
	} else {
		// Some feeds send the market list bare
		var bare []models.Market
		if err := json.Unmarshal(data, &bare); err == nil {
			e.Markets = bare
		}
	}
	if e.Markets == nil {
		e.Markets = []models.Market{}
	}
	for i := range e.Markets {
		if e.Markets[i].MatchID == "" {
			e.Markets[i].MatchID = matchID
		}
		for j := range e.Markets[i].Runners {
			if e.Markets[i].Runners[j].MarketID == "" {
				e.Markets[i].Runners[j].MarketID = e.Markets[i].ID
			}
		}
	}
	return e
}

// normalizeWagerSettled converts a raw settlement payload
func normalizeWagerSettled(userID string, data []byte) events.WagerSettledEvent {
	raw := decodeLoose(data)
	e := events.WagerSettledEvent{
		UserID: userID,
		Profit: asFloat(raw["profit"]),
	}
	e.WagerID = asString(raw["wager_id"])
	if e.WagerID == "" {
		e.WagerID = asString(raw["bet_id"])
	}
	e.Status = parseWagerStatus(asString(raw["status"]))
	if ts := asString(raw["settled_at"]); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.SettledAt = t
		}
	}
	if e.SettledAt.IsZero() {
		e.SettledAt = time.Now().UTC()
	}
	return e
}

func parseWagerStatus(s string) models.WagerStatus {
	switch strings.ToUpper(s) {
	case "WON":
		return models.WagerStatusWon
	case "LOST":
		return models.WagerStatusLost
	case "VOID":
		return models.WagerStatusVoid
	case "OPEN":
		return models.WagerStatusOpen
	}
	return ""
}

// normalizeWallet converts a raw wallet payload
func normalizeWallet(userID string, data []byte) events.WalletUpdateEvent {
	raw := decodeLoose(data)
	return events.WalletUpdateEvent{
		UserID:   userID,
		Balance:  asFloat(raw["balance"]),
		Exposure: asFloat(raw["exposure"]),
		Currency: asString(raw["currency"]),
	}
}
