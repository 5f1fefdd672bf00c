// Package fetch retrieves page HTML. A fetcher chain tries engines in
// order so a heavier engine can fall back to a plain HTTP client.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultSeedTimeout applies to seed page fetches.
	DefaultSeedTimeout = 30 * time.Second
	// DefaultLinkTimeout applies to deep-link fetches.
	DefaultLinkTimeout = 15 * time.Second
	// DefaultUserAgent is sent when no override is configured.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// defaultMaxBodyBytes caps the response body read.
	defaultMaxBodyBytes = 10 << 20
)

var (
	// ErrNoFetcher is returned by a chain built with no fetchers.
	ErrNoFetcher = errors.New("fetch: no fetchers configured")
	// ErrFetchUnavailable is returned when every engine in a chain failed.
	ErrFetchUnavailable = errors.New("fetch: all engines failed")
)

// Result is a fetched page.
type Result struct {
	URL        string
	HTML       []byte
	StatusCode int
	// FetchedVia names the engine that produced the result.
	FetchedVia string
}

// Fetcher retrieves one page.
type Fetcher interface {
	// Name identifies the engine in logs and failure reasons.
	Name() string
	Fetch(ctx context.Context, pageURL string) (*Result, error)
}

// Chain tries fetchers in order and returns the first success. Every
// engine's failure reason is carried in the final error when all fail.
type Chain struct {
	fetchers []Fetcher
}

// NewChain builds a fetcher chain. Order matters.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

// Name implements Fetcher so a chain can nest inside another chain.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.fetchers))
	for _, f := range c.fetchers {
		names = append(names, f.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// Fetch tries each engine until one succeeds.
func (c *Chain) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if len(c.fetchers) == 0 {
		return nil, ErrNoFetcher
	}

	var reasons []string
	for _, f := range c.fetchers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := f.Fetch(ctx, pageURL)
		if err == nil {
			return result, nil
		}
		reasons = append(reasons, f.Name()+": "+err.Error())
	}

	return nil, fmt.Errorf("%w: %s", ErrFetchUnavailable, strings.Join(reasons, "; "))
}
