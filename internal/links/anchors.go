package links

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vigialabs/vigia/internal/domain"
)

// ExtractAnchors parses page HTML and returns every anchor with its href
// resolved against the page URL. Relative hrefs become absolute here so
// the classifier sees crawlable URLs.
func ExtractAnchors(pageURL string, html []byte) ([]domain.CrawlLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var anchors []domain.CrawlLink
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		resolved, resolveErr := base.Parse(href)
		if resolveErr != nil {
			return
		}

		title, _ := a.Attr("title")
		anchors = append(anchors, domain.CrawlLink{
			Href:  resolved.String(),
			Text:  strings.TrimSpace(a.Text()),
			Title: strings.TrimSpace(title),
		})
	})
	return anchors, nil
}
