package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookline/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	requestsPerSec = 10
	requestBurst   = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// APIError is a non-retryable rejection from the backend. Message carries the
// backend's human-readable reason (insufficient balance, suspended market,
// validation failure) and is surfaced to the user verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error %d", e.Status)
}

// Backend is the HTTP client for the external service layer that owns
// persistence, settlement and wallet state. Requests are rate limited and
// retried with exponential backoff on transient failures.
type Backend struct {
	http      *http.Client
	baseURL   string
	limiter   *rate.Limiter
	retryWait time.Duration
}

// NewBackend creates a client for the given base URL
func NewBackend(baseURL string) *Backend {
	return &Backend{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(requestsPerSec, requestBurst),
		retryWait: baseRetryWait,
	}
}

// GetCurrentMatches fetches the full snapshot of live and upcoming matches.
// Polled on an interval as a correctness backstop independent of the
// real-time channel.
func (b *Backend) GetCurrentMatches(ctx context.Context) ([]*models.Match, error) {
	var out []*models.Match
	if err := b.get(ctx, "/api/v1/matches?status=live,upcoming", &out); err != nil {
		return nil, fmt.Errorf("fetch current matches: %w", err)
	}
	return out, nil
}

// GetInstanceMarkets fetches a match's short-lived quick-play sub-markets,
// filtered by market status.
func (b *Backend) GetInstanceMarkets(ctx context.Context, matchID string, statuses []models.MarketStatus) ([]models.Market, error) {
	filters := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filters = append(filters, string(s))
	}
	path := fmt.Sprintf("/api/v1/matches/%s/markets", url.PathEscape(matchID))
	if len(filters) > 0 {
		path += "?status=" + url.QueryEscape(strings.Join(filters, ","))
	}
	var out struct {
		Markets []models.Market `json:"markets"`
	}
	if err := b.get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("fetch instance markets for %s: %w", matchID, err)
	}
	return out.Markets, nil
}

// placeWagerRequest is the wire shape of a placement call. RequestID makes
// retried submissions idempotent on the backend side.
type placeWagerRequest struct {
	RequestID  string           `json:"requestId"`
	MatchID    string           `json:"matchId"`
	MarketID   string           `json:"marketId"`
	RunnerID   string           `json:"runnerId"`
	RunnerName string           `json:"runnerName"`
	Type       models.WagerType `json:"type"`
	Odds       float64          `json:"odds"`
	Stake      float64          `json:"stake"`
}

// PlaceWager submits a wager. A rejection (insufficient balance, suspended
// market, validation failure) comes back as an *APIError whose message is
// shown to the user as-is. The backend never mutates the wallet on rejection.
func (b *Backend) PlaceWager(ctx context.Context, ticket models.WagerTicket) (*models.Wager, error) {
	req := placeWagerRequest{
		RequestID:  uuid.NewString(),
		MatchID:    ticket.MatchID,
		MarketID:   ticket.MarketID,
		RunnerID:   ticket.RunnerID,
		RunnerName: ticket.RunnerName,
		Type:       ticket.Type,
		Odds:       ticket.Odds,
		Stake:      ticket.Stake,
	}
	var receipt models.Wager
	if err := b.post(ctx, "/api/v1/wagers", req, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetCurrentUser fetches the authenticated user with authoritative wallet
// figures. This is the sole source of truth for balance and exposure after
// any mutating action.
func (b *Backend) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := b.get(ctx, "/api/v1/me", &out); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return &out, nil
}

func (b *Backend) get(ctx context.Context, path string, out any) error {
	return b.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return b.http.Do(req)
	}, out)
}

func (b *Backend) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return b.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return b.http.Do(req)
	}, out)
}

// doWithRetry runs the request with exponential backoff on network errors,
// 429s and 5xx. 4xx responses are terminal and carry the backend's message.
func (b *Backend) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			b.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			log.WithFields(log.Fields{
				"status":  resp.StatusCode,
				"attempt": attempt + 1,
			}).Warn("Retrying backend request")
			b.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{Status: resp.StatusCode}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(string(body))
			}
			return apiErr
		}

		defer resp.Body.Close()
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

func (b *Backend) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * b.retryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
