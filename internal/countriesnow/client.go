// Package countriesnow provides a client for the countriesnow.space public
// statistics API, which serves per-country population time series. The
// client handles retries with linear backoff and maps the wire envelope to
// the internal raw record model. A companion Cache stores fetched payloads
// on disk so repeated runs can work offline.
package countriesnow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/populytics/populytics/internal/models"
)

// Client provides access to the countriesnow population API
type Client struct {
	apiBaseURL     string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// envelope is the wire shape of every countriesnow response.
type envelope struct {
	Error bool                      `json:"error"`
	Msg   string                    `json:"msg"`
	Data  []models.PopulationRecord `json:"data"`
}

// NewClient creates a new countriesnow client
func NewClient(apiBaseURL string, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		apiBaseURL: apiBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// FetchPopulation retrieves the full population dataset: one record per
// country with its year-by-year counts.
func (c *Client) FetchPopulation(ctx context.Context) ([]models.PopulationRecord, error) {
	url := fmt.Sprintf("%s/countries/population", c.apiBaseURL)

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch population data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from population endpoint", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode population response: %w", err)
	}
	if env.Error {
		return nil, fmt.Errorf("population API reported an error: %s", env.Msg)
	}

	return env.Data, nil
}

// doRequest performs an HTTP GET with retry on transport and 5xx failures.
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if waitErr := sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if waitErr := sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
