package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookline/client"
	"bookline/models"
	"bookline/service"
	"bookline/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func seedStore() *store.Store {
	st := store.NewStore()
	st.SetMatches([]*models.Match{{
		ID:     "m1",
		Sport:  "cricket",
		Status: models.MatchStatusLive,
		Runs:   120,
		Markets: []models.Market{
			{ID: "mk1", MatchID: "m1", Name: "Toss Result", Status: models.MarketStatusOpen,
				Runners: []models.Runner{{ID: "r0", Name: "Heads"}}},
			{ID: "mk2", MatchID: "m1", Name: "Match Winner", Status: models.MarketStatusOpen,
				Runners: []models.Runner{{ID: "r1", Name: "India", BackOdds: models.OddsValue(1.85)}}},
		},
	}})
	return st
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAPI_ListMatches(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var matches []models.Match
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	assert.Len(t, matches, 1)
	assert.Equal(t, "m1", matches[0].ID)
}

func TestAPI_GetMatch_CarriesDerivedFields(t *testing.T) {
	st := store.NewStore()
	st.SetMatches([]*models.Match{{
		ID:           "m1",
		Sport:        "cricket",
		Status:       models.MatchStatusLive,
		TossWinner:   "India",
		TossDecision: "bat",
		CurrentOver:  12,
		CurrentBall:  4,
		TargetRuns:   180,
		Runs:         125,
	}})
	router := NewRouter(st, new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/m1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "India won the toss and elected to bat", body["tossLine"])
	assert.Equal(t, "12.4", body["overDisplay"])
	assert.Equal(t, 55.0, body["runsToTarget"])
}

func TestAPI_ListMatches_UpcomingCarriesCountdown(t *testing.T) {
	st := store.NewStore()
	st.SetMatches([]*models.Match{{
		ID:        "m1",
		Sport:     "cricket",
		Status:    models.MatchStatusUpcoming,
		StartTime: time.Now().Add(45*time.Minute + 30*time.Second),
	}})
	router := NewRouter(st, new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "45m", body[0]["startsIn"])
	_, hasOver := body[0]["overDisplay"]
	assert.False(t, hasOver)
}

func TestAPI_GetMatch_NotFound(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/ghost", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GetPrimaryMarket(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/m1/primary-market", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var market models.Market
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &market))
	assert.Equal(t, "mk2", market.ID)
	assert.Equal(t, "Match Winner", market.Name)
}

func TestAPI_GetPrimaryMarket_NoMarkets(t *testing.T) {
	st := store.NewStore()
	st.SetMatches([]*models.Match{{ID: "m1", Status: models.MatchStatusLive}})
	router := NewRouter(st, new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/matches/m1/primary-market", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_QuoteWager(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/quote",
		`{"type": "BACK", "odds": 2.5, "stake": 100}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var quote quoteResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 150.0, quote.PotentialProfit)
	assert.Equal(t, 100.0, quote.Liability)
}

func TestAPI_QuoteWager_StringAndGarbageStake(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	// Stake straight from a text input, as a string
	rec := doRequest(t, router, http.MethodPost, "/api/v1/quote",
		`{"type": "LAY", "odds": "3.0", "stake": "50"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	var quote quoteResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 50.0, quote.PotentialProfit)
	assert.Equal(t, 100.0, quote.Liability)

	// Garbage stake quotes zero, never an error
	rec = doRequest(t, router, http.MethodPost, "/api/v1/quote",
		`{"type": "BACK", "odds": 2.5, "stake": "abc"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 0.0, quote.PotentialProfit)
	assert.Equal(t, 0.0, quote.Liability)
}

func TestAPI_PlaceWager_Accepted(t *testing.T) {
	betting := new(service.MockBettingService)
	router := NewRouter(seedStore(), betting)

	receipt := &models.Wager{ID: "w1", Status: models.WagerStatusOpen, Odds: 2.5, Stake: 100}
	betting.On("PlaceWager", mock.Anything, mock.MatchedBy(func(tk models.WagerTicket) bool {
		return tk.RunnerID == "r1" && tk.Stake == 100
	})).Return(receipt, nil)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/wagers",
		`{"matchId": "m1", "marketId": "mk2", "runnerId": "r1", "type": "BACK", "odds": 2.5, "stake": 100}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var wager models.Wager
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wager))
	assert.Equal(t, "w1", wager.ID)
	betting.AssertExpectations(t)
}

func TestAPI_PlaceWager_BackendRejectionKeepsStatusAndMessage(t *testing.T) {
	betting := new(service.MockBettingService)
	router := NewRouter(seedStore(), betting)

	betting.On("PlaceWager", mock.Anything, mock.Anything).
		Return(nil, &client.APIError{Status: http.StatusPaymentRequired, Message: "insufficient balance"})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/wagers",
		`{"matchId": "m1", "marketId": "mk2", "runnerId": "r1", "type": "BACK", "odds": 2.5, "stake": 1000000}`)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "insufficient balance", body["error"])
}

func TestAPI_PlaceWager_ValidationFailure(t *testing.T) {
	betting := new(service.MockBettingService)
	router := NewRouter(seedStore(), betting)

	betting.On("PlaceWager", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/wagers",
		`{"matchId": "m1", "marketId": "mk2", "runnerId": "r1", "type": "BACK", "odds": 2.5, "stake": 0}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_ListWagersAndUser(t *testing.T) {
	st := seedStore()
	st.UpsertWager(&models.Wager{ID: "w1", Status: models.WagerStatusOpen})
	st.SetUser(&models.User{ID: "u1", Username: "punter", Balance: 1000})
	router := NewRouter(st, new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/wagers", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var wagers []models.Wager
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wagers))
	assert.Len(t, wagers, 1)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/me", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, 1000.0, user.Balance)
}

func TestAPI_GetCurrentUser_NoSession(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/me", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_HealthCheck(t *testing.T) {
	router := NewRouter(seedStore(), new(service.MockBettingService))

	rec := doRequest(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}
