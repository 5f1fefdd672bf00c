// Package extract turns a rendered page into structured article fields,
// bounded to the main article container with boilerplate regions removed.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vigialabs/vigia/internal/domain"
)

const (
	// minContainerTextLength qualifies a candidate article container.
	minContainerTextLength = 200
	// minParagraphLength filters layout noise out of paragraph extraction.
	minParagraphLength = 30
	// maxArticleTextLength caps per-page work downstream.
	maxArticleTextLength = 12000
	// maxHeadings and maxSubheadings bound heading extraction.
	maxHeadings    = 3
	maxSubheadings = 8
	// maxParagraphs bounds paragraph extraction.
	maxParagraphs = 30
)

// Extractor extracts article content from HTML using goquery.
type Extractor struct {
	rules Rules
}

// New creates an extractor with the default rules.
func New() *Extractor {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates an extractor with source-specific rules.
func NewWithRules(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract parses HTML and produces the structured page content. Parse
// failures are the only hard error; missing fields degrade to empty values.
func (e *Extractor) Extract(pageURL string, html []byte) (*domain.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := &domain.PageContent{URL: pageURL}

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	content.OgTitle = metaProperty(doc, "og:title")
	content.OgDescription = metaProperty(doc, "og:description")

	content.Description = metaName(doc, "description")
	if content.Description == "" {
		content.Description = content.OgDescription
	}

	content.Author = metaName(doc, "author")
	if content.Author == "" {
		content.Author = metaProperty(doc, "article:author")
	}

	content.PublishedDate = metaProperty(doc, "article:published_time")
	if content.PublishedDate == "" {
		content.PublishedDate = metaName(doc, "date")
	}

	container := e.findArticleContainer(doc)
	content.ArticleText = e.articleText(container, doc)
	content.Paragraphs = e.paragraphs(container, doc)
	content.Headings, content.Subheadings = e.headings(container, doc)

	return content, nil
}

// findArticleContainer returns the first container rule match whose text
// exceeds the qualifying length, or nil when no rule qualifies.
func (e *Extractor) findArticleContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range e.rules.Containers {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if len(collapseWhitespace(sel.Text())) > minContainerTextLength {
			return sel
		}
	}
	return nil
}

// isBoilerplate walks the element's ancestor chain (self included) against
// the boilerplate rules.
func (e *Extractor) isBoilerplate(sel *goquery.Selection) bool {
	for _, selector := range e.rules.Boilerplate {
		if sel.Closest(selector).Length() > 0 {
			return true
		}
	}
	return false
}

// articleText extracts the full article text with boilerplate subtrees
// removed, capped at maxArticleTextLength characters. Falls back to the
// whole page body when no article container qualified.
func (e *Extractor) articleText(container *goquery.Selection, doc *goquery.Document) string {
	scope := container
	if scope == nil {
		scope = doc.Find("body").First()
		if scope.Length() == 0 {
			return ""
		}
	}

	clone := scope.Clone()
	clone.Find("script, style, noscript").Remove()
	for _, selector := range e.rules.Boilerplate {
		clone.Find(selector).Remove()
	}

	text := collapseWhitespace(clone.Text())
	return truncateRunes(text, maxArticleTextLength)
}

// paragraphs collects up to maxParagraphs paragraphs longer than
// minParagraphLength, skipping boilerplate regions.
func (e *Extractor) paragraphs(container *goquery.Selection, doc *goquery.Document) []string {
	scope := container
	if scope == nil {
		scope = doc.Selection
	}

	var out []string
	scope.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if e.isBoilerplate(p) {
			return true
		}
		text := collapseWhitespace(p.Text())
		if len(text) > minParagraphLength {
			out = append(out, text)
		}
		return len(out) < maxParagraphs
	})
	return out
}

// headings collects article headings and subheadings confined to the
// container, with a page-title fallback when the article carries no H1.
func (e *Extractor) headings(container *goquery.Selection, doc *goquery.Document) (h1s, h2s []string) {
	scope := container
	if scope == nil {
		scope = doc.Selection
	}

	scope.Find("h1").Each(func(_ int, h *goquery.Selection) {
		if e.isBoilerplate(h) {
			return
		}
		if text := collapseWhitespace(h.Text()); text != "" {
			h1s = append(h1s, text)
		}
	})

	scope.Find("h2").Each(func(_ int, h *goquery.Selection) {
		if e.isBoilerplate(h) {
			return
		}
		if text := collapseWhitespace(h.Text()); text != "" {
			h2s = append(h2s, text)
		}
	})

	if len(h1s) == 0 {
		fallback := doc.Find("h1.title, h1.headline, .article-title h1, .post-title h1").First()
		if fallback.Length() > 0 && !e.isBoilerplate(fallback) {
			if text := collapseWhitespace(fallback.Text()); text != "" {
				h1s = append(h1s, text)
			}
		}
	}

	if len(h1s) > maxHeadings {
		h1s = h1s[:maxHeadings]
	}
	if len(h2s) > maxSubheadings {
		h2s = h2s[:maxSubheadings]
	}
	return h1s, h2s
}

// metaProperty reads a meta tag by property attribute.
func metaProperty(doc *goquery.Document, property string) string {
	value, _ := doc.Find(fmt.Sprintf("meta[property='%s']", property)).Attr("content")
	return strings.TrimSpace(value)
}

// metaName reads a meta tag by name attribute.
func metaName(doc *goquery.Document, name string) string {
	value, _ := doc.Find(fmt.Sprintf("meta[name='%s']", name)).Attr("content")
	return strings.TrimSpace(value)
}

// collapseWhitespace normalizes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts a string to at most n runes without splitting UTF-8.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
