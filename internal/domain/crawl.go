package domain

import "time"

// Match locations reported by the keyword matcher, in priority order.
const (
	LocationTitle       = "titulo"
	LocationDescription = "descripcion"
	LocationHeading     = "h1_articulo"
	LocationSubheading  = "h2_articulo"
	LocationParagraphs  = "parrafos_articulo"
	LocationParagraph   = "parrafo"
	LocationBody        = "cuerpo_articulo"
)

// Snippet is a text excerpt around a keyword occurrence.
type Snippet struct {
	Location string `json:"location"`
	Text     string `json:"text"`
}

// KeywordMatch records where one keyword was found on a page and the
// excerpts surrounding each occurrence.
type KeywordMatch struct {
	Keyword   string    `json:"keyword"`
	Locations []string  `json:"locations"`
	Snippets  []Snippet `json:"snippets"`
}

// PageContent holds the structured fields extracted from a rendered page,
// bounded to the main article container with boilerplate regions removed.
type PageContent struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	OgTitle       string   `json:"og_title"`
	OgDescription string   `json:"og_description"`
	Author        string   `json:"author"`
	PublishedDate string   `json:"published_date"`
	Headings      []string `json:"h1"`
	Subheadings   []string `json:"h2"`
	Paragraphs    []string `json:"paragraphs"`
	ArticleText   string   `json:"article_text"`
}

// HasArticleContent reports whether a dedicated article container was found.
func (c *PageContent) HasArticleContent() bool {
	return len(c.ArticleText) > 200
}

// CrawlLink is an outbound link discovered on a source page, annotated
// with the keywords present in its href, text, or title attribute.
type CrawlLink struct {
	Href       string   `json:"href"`
	Text       string   `json:"text"`
	Title      string   `json:"title"`
	Keywords   []string `json:"keywords_in_link,omitempty"`
	HasKeyword bool     `json:"has_keyword"`
}

// CrawlPage summarizes one visited source page.
type CrawlPage struct {
	URL               string         `json:"url"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Author            string         `json:"author"`
	PublishedDate     string         `json:"published_date"`
	Matches           []KeywordMatch `json:"keyword_matches,omitempty"`
	KeywordsFound     []string       `json:"keywords_found,omitempty"`
	HasMatch          bool           `json:"has_match"`
	TotalLinksFound   int            `json:"total_links_found"`
	LinksWithKeywords int            `json:"links_with_keywords"`
	LinksAnalyzed     int            `json:"links_analyzed"`
	Error             string         `json:"error,omitempty"`
}

// AnalyzedLink is the outcome of visiting one discovered outbound link.
type AnalyzedLink struct {
	URL            string         `json:"url"`
	SourceURL      string         `json:"source_url"`
	LinkText       string         `json:"link_text"`
	KeywordsInLink []string       `json:"keywords_in_link,omitempty"`
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	Author         string         `json:"author,omitempty"`
	PublishedDate  string         `json:"published_date,omitempty"`
	Headings       []string       `json:"h1,omitempty"`
	KeywordsFound  []string       `json:"keywords_found,omitempty"`
	Matches        []KeywordMatch `json:"keyword_matches,omitempty"`
	HasMatch       bool           `json:"has_match"`
	Error          string         `json:"error,omitempty"`
}

// MatchingURL is a page whose content matched at least one keyword inside
// the effective date window.
type MatchingURL struct {
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Author         string         `json:"author"`
	PublishedDate  string         `json:"published_date"`
	KeywordsInLink []string       `json:"keywords_in_link,omitempty"`
	KeywordsFound  []string       `json:"keywords_found"`
	Matches        []KeywordMatch `json:"matches_detail"`
	Source         string         `json:"source"`
}

// FilteredURL is a page whose content matched keywords but whose
// publication date fell outside the effective window.
type FilteredURL struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	PublishedDate string `json:"published_date"`
	Reason        string `json:"reason"`
}

// FilterReasonOutOfRange marks entries excluded by the date window.
const FilterReasonOutOfRange = "out_of_range"

// DateRange is the effective date window a crawl filtered against.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CrawlSummary aggregates counts for one crawl session.
type CrawlSummary struct {
	KeywordsSearched         []string `json:"keywords_searched"`
	TotalSourcePages         int      `json:"total_source_pages"`
	TotalLinksAnalyzed       int      `json:"total_links_analyzed"`
	LinksWithKeywordsVisited int      `json:"links_with_keywords_visited"`
	TotalMatchingURLs        int      `json:"total_matching_urls"`
	TotalFilteredByDate      int      `json:"total_filtered_by_date"`
	DeepSearchEnabled        bool     `json:"deep_search_enabled"`
	MaxLinksPerPage          string   `json:"max_links_per_page"`
}

// CrawlResult is the aggregated, deduplicated outcome of one crawl session.
type CrawlResult struct {
	SessionID      string         `json:"session_id"`
	KeywordsUsed   []string       `json:"keywords_used"`
	SourcePages    []CrawlPage    `json:"source_pages"`
	AnalyzedLinks  []AnalyzedLink `json:"analyzed_links"`
	MatchingURLs   []MatchingURL  `json:"matching_urls"`
	FilteredByDate []FilteredURL  `json:"filtered_by_date"`
	DateRange      DateRange      `json:"date_range"`
	Summary        CrawlSummary   `json:"summary"`
	Warnings       []string       `json:"warnings,omitempty"`
}
