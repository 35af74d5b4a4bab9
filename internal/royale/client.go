package royale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cr_matchup_stats/internal/app"
	"cr_matchup_stats/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// StatusError is returned when the API answers with a non-200 status
type StatusError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("API request failed with status %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	limiter      *rate.Limiter
	retry        config.RetryConfig
	apiCallCount int64
	apiCallMutex sync.Mutex
}

func NewClient(apiKey, baseURL string) *Client {
	return NewClientWithConfig(apiKey, baseURL, nil, config.DefaultResilienceConfig)
}

// NewClientWithConfig creates a client with explicit HTTP client and resilience settings
func NewClientWithConfig(apiKey, baseURL string, httpClient *http.Client, resilience config.ResilienceConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: resilience.APIRequest.Timeout,
		}
	}
	if baseURL == "" {
		baseURL = app.DefaultAPIBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		limiter: resilience.RateLimit.Limiter(),
		retry:   resilience.APIRequest,
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// ResetAPICallCount resets the API call counter to zero
func (c *Client) ResetAPICallCount() {
	c.apiCallMutex.Lock()
	c.apiCallCount = 0
	c.apiCallMutex.Unlock()
}

// makeAPIRequest waits for the rate limiter, then executes an authenticated GET
func (c *Client) makeAPIRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("url", endpoint).
			Msg("API request failed")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	c.IncrementAPICall()
	return resp, nil
}

// handleAPIResponse processes the HTTP response and returns the body bytes
func (c *Client) handleAPIResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: string(body)}
		var apiErr app.APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			statusErr.Reason = apiErr.Reason
			statusErr.Message = apiErr.Message
		}
		return nil, statusErr
	}

	return body, nil
}

// getJSON fetches path and decodes the body into out, retrying transient failures
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := c.baseURL + path

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := c.retry.Backoff(attempt - 1)
			log.Debug().
				Err(lastErr).
				Str("path", path).
				Int("attempt", attempt).
				Dur("wait", wait).
				Msg("Retrying API request")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := c.fetch(ctx, endpoint)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to decode response from %s: %w", path, err)
			}
			return nil
		}

		lastErr = err
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.makeAPIRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return c.handleAPIResponse(resp)
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	// Transport errors (timeouts, resets) are worth another attempt
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// NormalizeTag upper-cases a player tag and ensures the leading '#'
func NormalizeTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

// GetCards fetches every card and tower troop in the game
func (c *Client) GetCards(ctx context.Context) (*app.CardsResponse, error) {
	log.Debug().Msg("Fetching card list")

	var cards app.CardsResponse
	if err := c.getJSON(ctx, "/cards", &cards); err != nil {
		return nil, fmt.Errorf("failed to fetch cards: %w", err)
	}

	log.Debug().
		Int("cards", len(cards.Items)).
		Int("support_cards", len(cards.SupportItems)).
		Msg("Successfully fetched card list")

	return &cards, nil
}

// GetBattleLog fetches a player's recent battles (all modes)
func (c *Client) GetBattleLog(ctx context.Context, tag string) ([]app.Battle, error) {
	tag = NormalizeTag(tag)
	path := "/players/" + url.PathEscape(tag) + "/battlelog"

	log.Debug().Str("tag", tag).Msg("Fetching battle log")

	var battles []app.Battle
	if err := c.getJSON(ctx, path, &battles); err != nil {
		return nil, fmt.Errorf("failed to fetch battle log for %s: %w", tag, err)
	}

	log.Debug().
		Str("tag", tag).
		Int("battles", len(battles)).
		Msg("Successfully fetched battle log")

	return battles, nil
}

// GetTopPlayers fetches the top `limit` ranked players for a season (e.g. "2025-08")
func (c *Client) GetTopPlayers(ctx context.Context, season string, limit int) ([]app.RankedPlayer, error) {
	path := fmt.Sprintf("/locations/global/pathoflegend/%s/rankings/players?limit=%d", url.PathEscape(season), limit)

	log.Debug().
		Str("season", season).
		Int("limit", limit).
		Msg("Fetching season rankings")

	var rankings app.RankingsResponse
	if err := c.getJSON(ctx, path, &rankings); err != nil {
		return nil, fmt.Errorf("failed to fetch rankings for season %s: %w", season, err)
	}

	return rankings.Items, nil
}
