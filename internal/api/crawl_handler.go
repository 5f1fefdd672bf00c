package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vigialabs/vigia/internal/crawl"
	"github.com/vigialabs/vigia/internal/daterange"
)

// crawlRequest is the POST /api/v1/crawl request body.
type crawlRequest struct {
	Keywords        []string `json:"keywords" binding:"required"`
	URLs            []string `json:"urls" binding:"required"`
	DeepSearch      bool     `json:"deep_search"`
	MaxLinksPerPage int      `json:"max_links_per_page"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	MonthsBack      int      `json:"months_back"`
}

// handleCrawl handles POST /api/v1/crawl.
func (s *Server) handleCrawl(c *gin.Context) {
	var body crawlRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := crawl.Request{
		Keywords:        body.Keywords,
		URLs:            body.URLs,
		DeepSearch:      body.DeepSearch,
		MaxLinksPerPage: body.MaxLinksPerPage,
		MonthsBack:      body.MonthsBack,
	}

	var err error
	if req.From, err = parseOptionalDate(body.From); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.To, err = parseOptionalDate(body.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.metrics != nil {
		s.metrics.CrawlSessions.Inc()
	}
	result, err := s.crawler.Crawl(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, crawl.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("crawl session failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "crawl session failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, ok := daterange.Parse(value)
	if !ok {
		return nil, fmt.Errorf("unparsable date: %q", value)
	}
	return &parsed, nil
}
