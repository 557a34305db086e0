package ingest

import (
	"testing"
	"time"

	"bookline/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBall_OutcomePriority(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		outcome string
	}{
		{
			name:    "wicket",
			payload: `{"ro_is_wicket": true, "ro_batsman_runs": 0}`,
			outcome: "W",
		},
		{
			name:    "wide with extra runs",
			payload: `{"ro_extra_type": "wide", "ro_total_runs": 2}`,
			outcome: "Wd+2",
		},
		{
			name:    "wide beats wicket",
			payload: `{"ro_extra_type": "wide", "ro_is_wicket": true, "ro_total_runs": 1}`,
			outcome: "Wd",
		},
		{
			name:    "no ball",
			payload: `{"ro_extra_type": "noball", "ro_total_runs": 1}`,
			outcome: "Nb",
		},
		{
			name:    "no ball with runs",
			payload: `{"ro_extra_type": "no-ball", "ro_total_runs": 5}`,
			outcome: "Nb+5",
		},
		{
			name:    "six",
			payload: `{"ro_is_six": true, "ro_batsman_runs": 6}`,
			outcome: "6",
		},
		{
			name:    "six beats boundary",
			payload: `{"ro_is_six": true, "ro_is_boundary": true, "ro_batsman_runs": 6}`,
			outcome: "6",
		},
		{
			name:    "boundary",
			payload: `{"ro_is_boundary": true, "ro_batsman_runs": 4}`,
			outcome: "4",
		},
		{
			name:    "dot ball",
			payload: `{"ro_batsman_runs": 0}`,
			outcome: "0",
		},
		{
			name:    "plain runs",
			payload: `{"ro_batsman_runs": 3}`,
			outcome: "3",
		},
		{
			name:    "empty payload is a dot",
			payload: `{}`,
			outcome: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := normalizeBall("m1", []byte(tt.payload))
			assert.Equal(t, tt.outcome, e.Outcome)
			assert.Equal(t, "m1", e.MatchID)
		})
	}
}

func TestNormalizeBall_TotalRunsFallsBackToSum(t *testing.T) {
	e := normalizeBall("m1", []byte(`{"ro_batsman_runs": 2, "ro_extra_runs": 1}`))
	assert.Equal(t, 3, e.TotalRuns)

	// An explicit total wins over the sum
	e = normalizeBall("m1", []byte(`{"ro_batsman_runs": 2, "ro_extra_runs": 1, "ro_total_runs": 5}`))
	assert.Equal(t, 5, e.TotalRuns)
}

func TestNormalizeBall_CoercesStringsAndNumbers(t *testing.T) {
	payload := `{"ro_over": "14", "ro_ball": 3, "ro_batsman_runs": "4", "ro_is_boundary": "true", "ro_inning": 2}`
	e := normalizeBall("m1", []byte(payload))

	assert.Equal(t, 14, e.Over)
	assert.Equal(t, 3, e.Ball)
	assert.Equal(t, 4, e.BatterRuns)
	assert.True(t, e.IsBoundary)
	assert.Equal(t, 2, e.Inning)
	assert.Equal(t, "4", e.Outcome)
}

func TestNormalizeBall_MalformedPayloadStillYieldsEvent(t *testing.T) {
	e := normalizeBall("m1", []byte(`not json at all`))
	assert.Equal(t, "m1", e.MatchID)
	assert.Equal(t, "0", e.Outcome)
}

func TestNormalizeScore_OnlyPresentFieldsPatch(t *testing.T) {
	e := normalizeScore("m1", []byte(`{"runs": 132, "wickets": 4}`))

	assert.Equal(t, 132, *e.Patch.Runs)
	assert.Equal(t, 4, *e.Patch.Wickets)
	assert.Nil(t, e.Patch.Overs)
	assert.Nil(t, e.Patch.Status)
	assert.Nil(t, e.Patch.BattingTeam)
}

func TestNormalizeScore_Status(t *testing.T) {
	e := normalizeScore("m1", []byte(`{"status": "live"}`))
	assert.Equal(t, models.MatchStatusLive, *e.Patch.Status)

	// A status the model does not know is dropped, not guessed
	e = normalizeScore("m1", []byte(`{"status": "delayed"}`))
	assert.Nil(t, e.Patch.Status)
}

func TestNormalizeScore_PrefersFeedSummary(t *testing.T) {
	payload := `{"score_summary": "IND: 132/4 (14.2 ov)", "innings": [{"team": "IND", "runs": 999}]}`
	e := normalizeScore("m1", []byte(payload))
	assert.Equal(t, "IND: 132/4 (14.2 ov)", e.ScoreLine)
	assert.Equal(t, "IND: 132/4 (14.2 ov)", *e.Patch.ScoreSummary)
}

func TestNormalizeScore_SynthesizesScoreLine(t *testing.T) {
	payload := `{"innings": [
		{"team": "IND", "runs": 187, "wickets": 5, "overs": 20},
		{"team": "AUS", "runs": 63, "wickets": 2, "overs": 8.4}
	]}`
	e := normalizeScore("m1", []byte(payload))
	assert.Equal(t, "IND: 187/5 (20 ov) | AUS: 63/2 (8.4 ov)", e.ScoreLine)
}

func TestNormalizeScore_SkipsInningsWithoutRuns(t *testing.T) {
	payload := `{"innings": [
		{"team": "IND", "runs": 187, "wickets": 5},
		{"team": "AUS", "runs": null},
		{"team": "AUS"}
	]}`
	e := normalizeScore("m1", []byte(payload))
	assert.Equal(t, "IND: 187/5", e.ScoreLine)
}

func TestNormalizeScore_SegmentsAreOptional(t *testing.T) {
	e := normalizeScore("m1", []byte(`{"innings": [{"team": "IND", "runs": 45}]}`))
	assert.Equal(t, "IND: 45", e.ScoreLine)

	e = normalizeScore("m1", []byte(`{"innings": [{"team": "IND", "runs": 45, "overs": 6}]}`))
	assert.Equal(t, "IND: 45 (6 ov)", e.ScoreLine)
}

func TestNormalizeScore_NoScoreNoSummaryPatch(t *testing.T) {
	e := normalizeScore("m1", []byte(`{"runs": 10}`))
	assert.Equal(t, "", e.ScoreLine)
	assert.Nil(t, e.Patch.ScoreSummary)
}

func TestNormalizeMarkets_WrappedAndBare(t *testing.T) {
	wrapped := `{"markets": [{"id": "mk1", "name": "Match Winner", "status": "OPEN"}]}`
	e := normalizeMarkets("m1", []byte(wrapped))
	assert.Len(t, e.Markets, 1)
	assert.Equal(t, "m1", e.Markets[0].MatchID)

	bare := `[{"id": "mk1", "name": "Match Winner", "status": "OPEN"}]`
	e = normalizeMarkets("m1", []byte(bare))
	assert.Len(t, e.Markets, 1)
	assert.Equal(t, "mk1", e.Markets[0].ID)
}

func TestNormalizeMarkets_StringOddsDecode(t *testing.T) {
	payload := `{"markets": [{
		"id": "mk1", "name": "Match Winner", "status": "OPEN",
		"runners": [
			{"id": "r1", "name": "India", "backOdds": "1.85", "layOdds": 1.9},
			{"id": "r2", "name": "Australia", "backOdds": "not a price"}
		]
	}]}`
	e := normalizeMarkets("m1", []byte(payload))

	runners := e.Markets[0].Runners
	assert.Equal(t, 1.85, *runners[0].BackOdds)
	assert.Equal(t, 1.9, *runners[0].LayOdds)
	assert.Nil(t, runners[1].BackOdds)
	assert.Nil(t, runners[1].LayOdds)
	// Runner market ids are backfilled from the enclosing market
	assert.Equal(t, "mk1", runners[0].MarketID)
}

func TestNormalizeMarkets_MalformedPayloadIsEmptyList(t *testing.T) {
	e := normalizeMarkets("m1", []byte(`garbage`))
	assert.NotNil(t, e.Markets)
	assert.Empty(t, e.Markets)
}

func TestNormalizeWagerSettled(t *testing.T) {
	payload := `{"wager_id": "w1", "status": "won", "profit": 150.5, "settled_at": "2026-08-30T12:00:00Z"}`
	e := normalizeWagerSettled("u1", []byte(payload))

	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "w1", e.WagerID)
	assert.Equal(t, models.WagerStatusWon, e.Status)
	assert.Equal(t, 150.5, e.Profit)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), e.SettledAt)
}

func TestNormalizeWagerSettled_BetIDFallbackAndDefaultTime(t *testing.T) {
	e := normalizeWagerSettled("u1", []byte(`{"bet_id": "w2", "status": "LOST"}`))

	assert.Equal(t, "w2", e.WagerID)
	assert.Equal(t, models.WagerStatusLost, e.Status)
	assert.False(t, e.SettledAt.IsZero())
}

func TestNormalizeWallet(t *testing.T) {
	e := normalizeWallet("u1", []byte(`{"balance": "900.50", "exposure": 100, "currency": "INR"}`))

	assert.Equal(t, 900.5, e.Balance)
	assert.Equal(t, 100.0, e.Exposure)
	assert.Equal(t, "INR", e.Currency)
}
