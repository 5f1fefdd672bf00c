package crawl

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidInput is returned when a request has no usable keywords or
// URLs after normalization.
var ErrInvalidInput = errors.New("crawl: keywords and urls must be non-empty")

// Request describes one crawl session.
type Request struct {
	// Keywords to search for. Normalized to lower-case, trimmed,
	// deduplicated before use.
	Keywords []string
	// URLs are the seed source pages.
	URLs []string
	// DeepSearch enables visiting discovered outbound links (one hop).
	DeepSearch bool
	// MaxLinksPerPage caps visited links per source page. Zero or less
	// means no cap.
	MaxLinksPerPage int
	// From and To bound the publication-date window. Nil values take
	// defaults.
	From *time.Time
	To   *time.Time
	// MonthsBack sets the default lookback when From is nil.
	MonthsBack int
}

// normalize trims and deduplicates the request inputs in place, keeping
// first-seen order.
func (r *Request) normalize() error {
	r.Keywords = normalizeKeywords(r.Keywords)
	r.URLs = normalizeURLs(r.URLs)
	if len(r.Keywords) == 0 || len(r.URLs) == 0 {
		return ErrInvalidInput
	}
	return nil
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func normalizeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !strings.Contains(u, "://") {
			u = "https://" + u
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
