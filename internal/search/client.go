// Package search queries a Custom Search-style web API for candidate
// source URLs about a target.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultEndpoint is the Custom Search API URL.
	DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"
	// DefaultNumResults is the result count requested per query.
	DefaultNumResults = 5
	// DefaultGeolocation biases results to the investigation's region.
	DefaultGeolocation = "co"
	// DefaultTimeout bounds one search call.
	DefaultTimeout = 15 * time.Second
)

// ErrMissingCredentials is returned when the API key or engine id is unset.
var ErrMissingCredentials = errors.New("search: api key and engine id are required")

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher finds source URLs for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Config holds the search API settings.
type Config struct {
	Endpoint    string
	APIKey      string
	EngineID    string
	NumResults  int
	Geolocation string
	Timeout     time.Duration
}

// Client is a Searcher over the Custom Search JSON API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a search client, applying defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.NumResults <= 0 {
		cfg.NumResults = DefaultNumResults
	}
	if cfg.Geolocation == "" {
		cfg.Geolocation = DefaultGeolocation
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchResponse struct {
	Items []Result `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Search runs one query and returns the hits. An empty result set is not
// an error.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c.cfg.APIKey == "" || c.cfg.EngineID == "" {
		return nil, ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(c.cfg.NumResults))
	params.Set("gl", c.cfg.Geolocation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("search api status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("search api status %d", resp.StatusCode)
	}

	return parsed.Items, nil
}

// TargetQuery derives the investigation query for a named target.
func TargetQuery(target string) string {
	return target + " noticias denuncias colombia"
}
