package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	colly "github.com/gocolly/colly/v2"
)

// CollyConfig tunes the colly-backed fetcher.
type CollyConfig struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
}

// CollyFetcher fetches single pages through a colly collector. It is the
// primary engine: cookie handling, charset detection, and redirects come
// for free.
type CollyFetcher struct {
	cfg CollyConfig
}

// NewCollyFetcher builds the colly-backed fetcher, applying defaults for
// unset fields.
func NewCollyFetcher(cfg CollyConfig) *CollyFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSeedTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodyBytes
	}
	return &CollyFetcher{cfg: cfg}
}

// Name implements Fetcher.
func (f *CollyFetcher) Name() string { return "colly" }

// Fetch visits one URL with a fresh collector. Each fetch is independent,
// so one page's visited-set or cookies never leak into the next.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(f.cfg.UserAgent),
		colly.MaxBodySize(f.cfg.MaxBodySize),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	)
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		result   *Result
		fetchErr error
	)

	collector.OnResponse(func(r *colly.Response) {
		result = &Result{
			URL:        r.Request.URL.String(),
			HTML:       r.Body,
			StatusCode: r.StatusCode,
			FetchedVia: f.Name(),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil && r.StatusCode > 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", pageURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if result == nil {
		return nil, fmt.Errorf("no response for %s", pageURL)
	}
	if result.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("status %d for %s", result.StatusCode, pageURL)
	}
	return result, nil
}
