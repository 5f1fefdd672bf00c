// Package api implements the HTTP API for the investigation service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vigialabs/vigia/internal/crawl"
	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/ingest"
	"github.com/vigialabs/vigia/internal/logger"
	"github.com/vigialabs/vigia/internal/metrics"
)

// CrawlRunner runs a crawl session.
type CrawlRunner interface {
	Crawl(ctx context.Context, req crawl.Request) (*domain.CrawlResult, error)
}

// InvestigationRunner runs a full investigation for one target.
type InvestigationRunner interface {
	Investigate(ctx context.Context, target string) (*ingest.Report, error)
}

// Server holds the handlers behind the HTTP surface.
type Server struct {
	logger       logger.Interface
	crawler      CrawlRunner
	investigator InvestigationRunner
	metrics      *metrics.Metrics
	version      string
}

// Params holds the parameters for creating a new API server.
type Params struct {
	Logger       logger.Interface
	Crawler      CrawlRunner
	Investigator InvestigationRunner
	Metrics      *metrics.Metrics
	Version      string
}

// NewServer creates a new API server instance.
func NewServer(p Params) *Server {
	return &Server{
		logger:       p.Logger,
		crawler:      p.Crawler,
		investigator: p.Investigator,
		metrics:      p.Metrics,
		version:      p.Version,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/crawl", s.handleCrawl)
	v1.POST("/investigate", s.handleInvestigate)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
