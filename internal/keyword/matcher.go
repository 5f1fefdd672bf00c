// Package keyword finds keyword occurrences in extracted page fields and
// produces bounded context snippets.
package keyword

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/vigialabs/vigia/internal/domain"
)

const (
	// paragraphContextChars is the snippet window around a paragraph hit.
	paragraphContextChars = 120
	// bodyContextChars is the snippet window around a full-text hit.
	bodyContextChars = 150
	// maxSnippetsPerKeyword bounds snippet retention, earliest-found first.
	maxSnippetsPerKeyword = 5
)

// Matcher tests keyword containment across extracted page fields.
// Matching is case-insensitive; keywords are expected pre-normalized
// (lower-cased, trimmed, deduplicated).
type Matcher struct {
	keywords  []string
	prefilter *ahocorasick.Matcher
}

// NewMatcher builds a matcher for the given normalized keyword set.
func NewMatcher(keywords []string) *Matcher {
	return &Matcher{
		keywords:  keywords,
		prefilter: ahocorasick.NewStringMatcher(keywords),
	}
}

// Match checks every keyword against the page content in field priority
// order: title, description, headings, subheadings, paragraphs, and full
// article text. The full text is only scanned when no paragraph matched,
// so paragraph snippets are not duplicated.
func (m *Matcher) Match(content *domain.PageContent) []domain.KeywordMatch {
	candidates := m.candidateKeywords(content)
	if len(candidates) == 0 {
		return nil
	}

	var matches []domain.KeywordMatch
	for _, kw := range candidates {
		if match := m.matchKeyword(kw, content); match != nil {
			matches = append(matches, *match)
		}
	}
	return matches
}

// candidateKeywords narrows the keyword set with one Aho-Corasick pass
// over the concatenated searchable fields.
func (m *Matcher) candidateKeywords(content *domain.PageContent) []string {
	var sb strings.Builder
	sb.WriteString(content.Title)
	sb.WriteByte('\n')
	sb.WriteString(content.OgTitle)
	sb.WriteByte('\n')
	sb.WriteString(content.Description)
	sb.WriteByte('\n')
	sb.WriteString(content.OgDescription)
	sb.WriteByte('\n')
	for _, h := range content.Headings {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	for _, h := range content.Subheadings {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	for _, p := range content.Paragraphs {
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	sb.WriteString(content.ArticleText)

	hits := m.prefilter.Match([]byte(strings.ToLower(sb.String())))
	if len(hits) == 0 {
		return nil
	}

	out := make([]string, 0, len(hits))
	for _, idx := range hits {
		out = append(out, m.keywords[idx])
	}
	return out
}

// matchKeyword records every location where one keyword occurs, with its
// snippets. Returns nil when the keyword matched nowhere.
func (m *Matcher) matchKeyword(kw string, content *domain.PageContent) *domain.KeywordMatch {
	match := domain.KeywordMatch{Keyword: kw}

	if contains(content.Title, kw) {
		record(&match, domain.LocationTitle, content.Title)
	} else if contains(content.OgTitle, kw) {
		record(&match, domain.LocationTitle, content.OgTitle)
	}

	if contains(content.Description, kw) {
		record(&match, domain.LocationDescription, content.Description)
	} else if contains(content.OgDescription, kw) {
		record(&match, domain.LocationDescription, content.OgDescription)
	}

	for _, h := range content.Headings {
		if contains(h, kw) {
			record(&match, domain.LocationHeading, h)
		}
	}

	for _, h := range content.Subheadings {
		if contains(h, kw) {
			record(&match, domain.LocationSubheading, h)
		}
	}

	paragraphMatched := false
	for _, p := range content.Paragraphs {
		if !contains(p, kw) {
			continue
		}
		paragraphMatched = true
		if snippet := Snippet(p, kw, paragraphContextChars); snippet != "" {
			addLocation(&match, domain.LocationParagraphs)
			match.Snippets = append(match.Snippets, domain.Snippet{
				Location: domain.LocationParagraph,
				Text:     snippet,
			})
		}
	}

	if !paragraphMatched && contains(content.ArticleText, kw) {
		if snippet := Snippet(content.ArticleText, kw, bodyContextChars); snippet != "" {
			record(&match, domain.LocationBody, snippet)
		}
	}

	if len(match.Locations) == 0 {
		return nil
	}

	if len(match.Snippets) > maxSnippetsPerKeyword {
		match.Snippets = match.Snippets[:maxSnippetsPerKeyword]
	}
	return &match
}

// Snippet extracts a word-boundary-trimmed window of text around the first
// keyword occurrence, with ellipsis markers at truncation points. Returns
// empty when the keyword is absent. The window is measured in runes so a
// truncation point never splits a multibyte character.
func Snippet(text, kw string, contextChars int) string {
	textRunes := []rune(text)
	lowered := make([]rune, len(textRunes))
	for i, r := range textRunes {
		lowered[i] = unicode.ToLower(r)
	}

	kwRunes := []rune(strings.ToLower(kw))
	pos := runeIndex(lowered, kwRunes)
	if pos == -1 {
		return ""
	}

	start := pos - contextChars
	if start < 0 {
		start = 0
	}
	end := pos + len(kwRunes) + contextChars
	if end > len(textRunes) {
		end = len(textRunes)
	}

	// Advance to the next word boundary so the window does not open
	// mid-word.
	if start > 0 {
		if spacePos := runeIndex(lowered[start:pos], []rune{' '}); spacePos != -1 {
			start += spacePos + 1
		}
	}
	if end < len(textRunes) {
		if spacePos := lastSpace(lowered[pos+len(kwRunes) : end]); spacePos != -1 {
			end = pos + len(kwRunes) + spacePos
		}
	}

	snippet := strings.TrimSpace(string(textRunes[start:end]))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(textRunes) {
		snippet += "..."
	}
	return snippet
}

// runeIndex returns the first occurrence of needle in haystack.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		j := 0
		for ; j < len(needle); j++ {
			if haystack[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

// lastSpace returns the last space index in runes, or -1.
func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}

// record registers a location hit and its snippet on the match.
func record(match *domain.KeywordMatch, location, text string) {
	addLocation(match, location)
	match.Snippets = append(match.Snippets, domain.Snippet{Location: location, Text: text})
}

// addLocation appends a location once, preserving first-seen order.
func addLocation(match *domain.KeywordMatch, location string) {
	for _, existing := range match.Locations {
		if existing == location {
			return
		}
	}
	match.Locations = append(match.Locations, location)
}

// contains is a case-insensitive substring test.
func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
