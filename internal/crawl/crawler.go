// Package crawl orchestrates keyword crawl sessions: seed pages are
// fetched and analyzed, outbound links optionally followed one hop, and
// results aggregated into a deduplicated session report.
package crawl

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/vigialabs/vigia/internal/daterange"
	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/extract"
	"github.com/vigialabs/vigia/internal/fetch"
	"github.com/vigialabs/vigia/internal/keyword"
	"github.com/vigialabs/vigia/internal/links"
	"github.com/vigialabs/vigia/internal/logger"
)

// DefaultConcurrency bounds simultaneous page fetches.
const DefaultConcurrency = 5

// Match sources.
const (
	sourcePage = "source_page"
	deepLink   = "deep_link"
)

// Crawler runs crawl sessions. Page failures never abort a session; each
// failure is recorded on its page entry and surfaced as a warning.
type Crawler struct {
	seedFetcher fetch.Fetcher
	linkFetcher fetch.Fetcher
	extractor   *extract.Extractor
	logger      logger.Interface
	concurrency int
}

// New builds a crawler. The link fetcher may equal the seed fetcher; it is
// separate so deep links can run with a shorter timeout.
func New(seedFetcher, linkFetcher fetch.Fetcher, extractor *extract.Extractor, log logger.Interface, concurrency int) *Crawler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Crawler{
		seedFetcher: seedFetcher,
		linkFetcher: linkFetcher,
		extractor:   extractor,
		logger:      log.WithComponent("crawl"),
		concurrency: concurrency,
	}
}

// sourceOutcome is the per-seed-page result, merged in input order after
// the concurrent phase so output stays deterministic.
type sourceOutcome struct {
	page     domain.CrawlPage
	matching *domain.MatchingURL
	filtered *domain.FilteredURL
	selected []domain.CrawlLink
	warning  string
}

// linkOutcome is the per-deep-link result.
type linkOutcome struct {
	analyzed domain.AnalyzedLink
	matching *domain.MatchingURL
	filtered *domain.FilteredURL
}

// Crawl runs one session. Only invalid input is a hard error.
func (c *Crawler) Crawl(ctx context.Context, req Request) (*domain.CrawlResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	window := daterange.Resolve(req.From, req.To, req.MonthsBack)
	matcher := keyword.NewMatcher(req.Keywords)
	classifier := links.NewClassifier(req.Keywords)

	sessionID := uuid.New().String()
	c.logger.Info("crawl session started",
		"session_id", sessionID,
		"keywords", len(req.Keywords),
		"urls", len(req.URLs),
		"deep_search", req.DeepSearch,
	)

	sources := c.processSources(ctx, req, matcher, classifier, window)

	var deepLinks []linkOutcome
	if req.DeepSearch {
		deepLinks = c.processDeepLinks(ctx, req, sources, matcher, window)
	}

	return c.assemble(sessionID, req, window, sources, deepLinks), nil
}

// processSources fetches and analyzes every seed page with bounded
// concurrency.
func (c *Crawler) processSources(
	ctx context.Context,
	req Request,
	matcher *keyword.Matcher,
	classifier *links.Classifier,
	window daterange.Window,
) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(req.URLs))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for i, pageURL := range req.URLs {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = c.processSource(ctx, pageURL, req, matcher, classifier, window)
		}(i, pageURL)
	}
	wg.Wait()
	return outcomes
}

// processSource handles one seed page end to end.
func (c *Crawler) processSource(
	ctx context.Context,
	pageURL string,
	req Request,
	matcher *keyword.Matcher,
	classifier *links.Classifier,
	window daterange.Window,
) sourceOutcome {
	out := sourceOutcome{page: domain.CrawlPage{URL: pageURL}}

	result, err := c.seedFetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Warn("source page fetch failed", "url", pageURL, "error", err)
		out.page.Error = err.Error()
		out.warning = fmt.Sprintf("source %s: %v", pageURL, err)
		return out
	}

	content, err := c.extractor.Extract(pageURL, result.HTML)
	if err != nil {
		c.logger.Warn("source page extraction failed", "url", pageURL, "error", err)
		out.page.Error = err.Error()
		out.warning = fmt.Sprintf("source %s: %v", pageURL, err)
		return out
	}

	out.page.Title = content.Title
	out.page.Description = content.Description
	out.page.Author = content.Author
	out.page.PublishedDate = content.PublishedDate

	matches := matcher.Match(content)
	out.page.Matches = matches
	out.page.KeywordsFound = keywordsOf(matches)
	out.page.HasMatch = len(matches) > 0

	anchors, err := links.ExtractAnchors(pageURL, result.HTML)
	if err == nil {
		classified := classifier.Classify(anchors)
		out.page.TotalLinksFound = len(classified)
		for _, l := range classified {
			if l.HasKeyword {
				out.page.LinksWithKeywords++
			}
		}
		if req.DeepSearch {
			out.selected = links.Select(classified, req.MaxLinksPerPage)
			out.page.LinksAnalyzed = len(out.selected)
		}
	}

	if out.page.HasMatch {
		if window.Contains(content.PublishedDate) {
			out.matching = &domain.MatchingURL{
				URL:           pageURL,
				Title:         content.Title,
				Description:   content.Description,
				Author:        content.Author,
				PublishedDate: content.PublishedDate,
				KeywordsFound: out.page.KeywordsFound,
				Matches:       matches,
				Source:        sourcePage,
			}
		} else {
			out.filtered = &domain.FilteredURL{
				URL:           pageURL,
				Title:         content.Title,
				PublishedDate: content.PublishedDate,
				Reason:        domain.FilterReasonOutOfRange,
			}
		}
	}
	return out
}

// processDeepLinks visits the selected outbound links one hop deep. Links
// already crawled as seed pages and duplicate hrefs across pages are
// skipped.
func (c *Crawler) processDeepLinks(
	ctx context.Context,
	req Request,
	sources []sourceOutcome,
	matcher *keyword.Matcher,
	window daterange.Window,
) []linkOutcome {
	type target struct {
		link      domain.CrawlLink
		sourceURL string
	}

	visited := make(map[string]struct{}, len(req.URLs))
	for _, u := range req.URLs {
		visited[u] = struct{}{}
	}

	var targets []target
	for i, src := range sources {
		for _, l := range src.selected {
			if _, dup := visited[l.Href]; dup {
				continue
			}
			visited[l.Href] = struct{}{}
			targets = append(targets, target{link: l, sourceURL: req.URLs[i]})
		}
	}

	outcomes := make([]linkOutcome, len(targets))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = c.processLink(ctx, tgt.link, tgt.sourceURL, matcher, window)
		}(i, tgt)
	}
	wg.Wait()
	return outcomes
}

// processLink visits one discovered link.
func (c *Crawler) processLink(
	ctx context.Context,
	link domain.CrawlLink,
	sourceURL string,
	matcher *keyword.Matcher,
	window daterange.Window,
) linkOutcome {
	out := linkOutcome{analyzed: domain.AnalyzedLink{
		URL:            link.Href,
		SourceURL:      sourceURL,
		LinkText:       link.Text,
		KeywordsInLink: link.Keywords,
	}}

	result, err := c.linkFetcher.Fetch(ctx, link.Href)
	if err != nil {
		c.logger.Debug("deep link fetch failed", "url", link.Href, "error", err)
		out.analyzed.Error = err.Error()
		return out
	}

	content, err := c.extractor.Extract(link.Href, result.HTML)
	if err != nil {
		out.analyzed.Error = err.Error()
		return out
	}

	out.analyzed.Title = content.Title
	out.analyzed.Description = content.Description
	out.analyzed.Author = content.Author
	out.analyzed.PublishedDate = content.PublishedDate
	out.analyzed.Headings = content.Headings

	matches := matcher.Match(content)
	out.analyzed.Matches = matches
	out.analyzed.KeywordsFound = keywordsOf(matches)
	out.analyzed.HasMatch = len(matches) > 0

	if !out.analyzed.HasMatch {
		return out
	}

	if window.Contains(content.PublishedDate) {
		out.matching = &domain.MatchingURL{
			URL:            link.Href,
			Title:          content.Title,
			Description:    content.Description,
			Author:         content.Author,
			PublishedDate:  content.PublishedDate,
			KeywordsInLink: link.Keywords,
			KeywordsFound:  out.analyzed.KeywordsFound,
			Matches:        matches,
			Source:         deepLink,
		}
	} else {
		out.filtered = &domain.FilteredURL{
			URL:           link.Href,
			Title:         content.Title,
			PublishedDate: content.PublishedDate,
			Reason:        domain.FilterReasonOutOfRange,
		}
	}
	return out
}

// assemble merges the concurrent outcomes into the session result in
// deterministic input order, deduplicating matching URLs first-wins.
func (c *Crawler) assemble(
	sessionID string,
	req Request,
	window daterange.Window,
	sources []sourceOutcome,
	deepLinks []linkOutcome,
) *domain.CrawlResult {
	result := &domain.CrawlResult{
		SessionID:    sessionID,
		KeywordsUsed: req.Keywords,
		DateRange:    domain.DateRange{From: window.From, To: window.To},
	}

	seenMatches := make(map[string]struct{})
	addMatch := func(m *domain.MatchingURL) {
		if m == nil {
			return
		}
		if _, dup := seenMatches[m.URL]; dup {
			return
		}
		seenMatches[m.URL] = struct{}{}
		result.MatchingURLs = append(result.MatchingURLs, *m)
	}

	linksWithKeywordsVisited := 0
	for _, src := range sources {
		result.SourcePages = append(result.SourcePages, src.page)
		addMatch(src.matching)
		if src.filtered != nil {
			result.FilteredByDate = append(result.FilteredByDate, *src.filtered)
		}
		if src.warning != "" {
			result.Warnings = append(result.Warnings, src.warning)
		}
	}
	for _, dl := range deepLinks {
		result.AnalyzedLinks = append(result.AnalyzedLinks, dl.analyzed)
		addMatch(dl.matching)
		if dl.filtered != nil {
			result.FilteredByDate = append(result.FilteredByDate, *dl.filtered)
		}
		if len(dl.analyzed.KeywordsInLink) > 0 {
			linksWithKeywordsVisited++
		}
	}

	maxLinks := "todos"
	if req.MaxLinksPerPage > 0 {
		maxLinks = strconv.Itoa(req.MaxLinksPerPage)
	}
	result.Summary = domain.CrawlSummary{
		KeywordsSearched:         req.Keywords,
		TotalSourcePages:         len(result.SourcePages),
		TotalLinksAnalyzed:       len(result.AnalyzedLinks),
		LinksWithKeywordsVisited: linksWithKeywordsVisited,
		TotalMatchingURLs:        len(result.MatchingURLs),
		TotalFilteredByDate:      len(result.FilteredByDate),
		DeepSearchEnabled:        req.DeepSearch,
		MaxLinksPerPage:          maxLinks,
	}

	c.logger.Info("crawl session finished",
		"session_id", sessionID,
		"matching_urls", len(result.MatchingURLs),
		"filtered_by_date", len(result.FilteredByDate),
		"warnings", len(result.Warnings),
	)
	return result
}

// keywordsOf lists the matched keywords in match order.
func keywordsOf(matches []domain.KeywordMatch) []string {
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Keyword)
	}
	return out
}
