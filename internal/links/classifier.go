// Package links classifies outbound links discovered on source pages and
// selects which ones a deep search should visit.
package links

import (
	"net/url"
	"strings"

	"github.com/vigialabs/vigia/internal/domain"
)

// Classifier annotates discovered links with keyword signals. Keywords are
// expected pre-normalized (lower-cased, trimmed, deduplicated).
type Classifier struct {
	keywords []string
}

// NewClassifier builds a classifier for the given keyword set.
func NewClassifier(keywords []string) *Classifier {
	return &Classifier{keywords: keywords}
}

// Classify filters raw anchors down to absolute http(s) links, deduplicated
// by href, each annotated with the keywords present in its href, text, or
// title attribute.
func (c *Classifier) Classify(anchors []domain.CrawlLink) []domain.CrawlLink {
	seen := make(map[string]struct{}, len(anchors))
	out := make([]domain.CrawlLink, 0, len(anchors))

	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		if !isCrawlable(href) {
			continue
		}
		if _, dup := seen[href]; dup {
			continue
		}
		seen[href] = struct{}{}

		link := domain.CrawlLink{
			Href:  href,
			Text:  strings.TrimSpace(a.Text),
			Title: strings.TrimSpace(a.Title),
		}
		link.Keywords = c.keywordsIn(link)
		link.HasKeyword = len(link.Keywords) > 0
		out = append(out, link)
	}
	return out
}

// Select picks up to limit links to visit, keyword-bearing links first in
// discovery order, then the remaining links in discovery order. A limit of
// zero or less means no cap.
func Select(links []domain.CrawlLink, limit int) []domain.CrawlLink {
	prioritized := make([]domain.CrawlLink, 0, len(links))
	for _, l := range links {
		if l.HasKeyword {
			prioritized = append(prioritized, l)
		}
	}
	for _, l := range links {
		if !l.HasKeyword {
			prioritized = append(prioritized, l)
		}
	}

	if limit > 0 && len(prioritized) > limit {
		prioritized = prioritized[:limit]
	}
	return prioritized
}

// keywordsIn collects the keywords appearing in any link attribute.
func (c *Classifier) keywordsIn(link domain.CrawlLink) []string {
	haystack := strings.ToLower(link.Href + " " + link.Text + " " + link.Title)

	var found []string
	for _, kw := range c.keywords {
		if strings.Contains(haystack, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// isCrawlable accepts only absolute http(s) URLs, rejecting fragments,
// javascript: pseudo-links, mailto:, and relative paths.
func isCrawlable(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
