// Package common wires the shared dependencies the subcommands need.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vigialabs/vigia/internal/config"
	"github.com/vigialabs/vigia/internal/crawl"
	"github.com/vigialabs/vigia/internal/database"
	"github.com/vigialabs/vigia/internal/embed"
	"github.com/vigialabs/vigia/internal/extract"
	"github.com/vigialabs/vigia/internal/fetch"
	"github.com/vigialabs/vigia/internal/ingest"
	"github.com/vigialabs/vigia/internal/logger"
	"github.com/vigialabs/vigia/internal/metrics"
	"github.com/vigialabs/vigia/internal/risk"
	"github.com/vigialabs/vigia/internal/search"
)

// Options carries the root command's global flags into dependency wiring.
type Options struct {
	ConfigFile string
	Debug      bool
}

// Deps holds the dependencies shared across subcommands.
type Deps struct {
	Config  *config.Config
	Logger  logger.Interface
	Metrics *metrics.Metrics
}

// NewDeps loads configuration and builds the logger and metrics.
func NewDeps(opts Options) (*Deps, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	}
	if opts.Debug {
		logCfg.Level = "debug"
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &Deps{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.NewDefault(),
	}, nil
}

// NewCrawler assembles the crawl orchestrator with its fetcher chains.
func (d *Deps) NewCrawler() *crawl.Crawler {
	seedChain := fetch.NewChain(
		fetch.NewCollyFetcher(fetch.CollyConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.SeedTimeout,
		}),
		fetch.NewHTTPFetcher(fetch.HTTPConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.SeedTimeout,
		}),
	)
	linkChain := fetch.NewChain(
		fetch.NewCollyFetcher(fetch.CollyConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.LinkTimeout,
		}),
		fetch.NewHTTPFetcher(fetch.HTTPConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.LinkTimeout,
		}),
	)

	return crawl.New(seedChain, linkChain, extract.New(), d.Logger, d.Config.Crawl.Concurrency)
}

// OpenDatabase connects to Postgres with the configured settings.
func (d *Deps) OpenDatabase() (*sqlx.DB, error) {
	return database.NewPostgresConnection(database.Config{
		Host:     d.Config.Database.Host,
		Port:     d.Config.Database.Port,
		User:     d.Config.Database.User,
		Password: d.Config.Database.Password,
		DBName:   d.Config.Database.DBName,
		SSLMode:  d.Config.Database.SSLMode,
	})
}

// NewInvestigator assembles the ingestion orchestrator over an open
// database handle.
func (d *Deps) NewInvestigator(db *sqlx.DB) *ingest.Investigator {
	repo := database.NewInvestigationRepository(db)
	knowledge := database.NewKnowledgeRepository(db)

	fetcher := fetch.NewChain(
		fetch.NewCollyFetcher(fetch.CollyConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.SeedTimeout,
		}),
		fetch.NewHTTPFetcher(fetch.HTTPConfig{
			UserAgent: d.Config.Crawl.UserAgent,
			Timeout:   d.Config.Crawl.SeedTimeout,
		}),
	)

	searcher := search.New(search.Config{
		Endpoint:    d.Config.Search.Endpoint,
		APIKey:      d.Config.Search.APIKey,
		EngineID:    d.Config.Search.EngineID,
		NumResults:  d.Config.Search.NumResults,
		Geolocation: d.Config.Search.Geolocation,
		Timeout:     d.Config.Search.Timeout,
	})

	embedder := embed.New(embed.Config{
		BaseURL: d.Config.Embed.BaseURL,
		APIKey:  d.Config.Embed.APIKey,
		Model:   d.Config.Embed.Model,
		Timeout: d.Config.Embed.Timeout,
	})

	return ingest.New(ingest.Params{
		Store:     repo,
		Searcher:  searcher,
		Fetcher:   fetcher,
		Extractor: extract.New(),
		Embedder:  embedder,
		Scorer:    risk.NewScorer(knowledge, d.Logger),
		Radar:     risk.NewRadar(knowledge),
		Metrics:   d.Metrics,
		Logger:    d.Logger,
	})
}
