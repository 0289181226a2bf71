package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://brasilapi.com.br/api/feriados/v1"

// Holiday is one public holiday as returned by the reference API.
type Holiday struct {
	Date string `json:"date"` // "YYYY-MM-DD"
	Name string `json:"name"`
	Type string `json:"type"`
}

// Cache stores fetched holiday lists per year. A nil cache disables caching.
type Cache interface {
	GetHolidays(year int) ([]Holiday, bool, error)
	PutHolidays(year int, hs []Holiday) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	logger     *slog.Logger
}

func NewClient(baseURL string, cache Cache, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

// Year returns the public holidays for the given year. Results are served
// from the cache when available; the API payload is passed through untouched.
func (c *Client) Year(ctx context.Context, year int) ([]Holiday, error) {
	if c.cache != nil {
		hs, ok, err := c.cache.GetHolidays(year)
		if err != nil {
			c.logger.Warn("holiday cache read failed", "year", year, "error", err)
		} else if ok {
			c.logger.Debug("holidays served from cache", "year", year, "count", len(hs))
			return hs, nil
		}
	}

	url := fmt.Sprintf("%s/%d", c.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.logger.Debug("fetching holidays", "year", year)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching holidays: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading holidays response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("holidays API error", "year", year, "status", resp.StatusCode)
		return nil, fmt.Errorf("holidays API returned status %d", resp.StatusCode)
	}

	var hs []Holiday
	if err := json.Unmarshal(body, &hs); err != nil {
		return nil, fmt.Errorf("parsing holidays response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.PutHolidays(year, hs); err != nil {
			c.logger.Warn("holiday cache write failed", "year", year, "error", err)
		}
	}

	return hs, nil
}
