// Package metrics exposes Prometheus counters for the crawl and
// ingestion pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. A single instance is shared by the
// crawl and ingestion paths.
type Metrics struct {
	PagesFetched    prometheus.Counter
	FetchErrors     prometheus.Counter
	DocumentsStored prometheus.Counter
	FragmentsScored prometheus.Counter
	RiskHits        prometheus.Counter
	EmbeddingErrors prometheus.Counter
	CrawlSessions   prometheus.Counter
	Investigations  prometheus.Counter
}

// New registers the counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_pages_fetched_total",
			Help: "Pages fetched across all engines.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_fetch_errors_total",
			Help: "Page fetches that failed after all engines.",
		}),
		DocumentsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_documents_stored_total",
			Help: "Documents persisted during ingestion.",
		}),
		FragmentsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_fragments_scored_total",
			Help: "Fragments embedded and risk-scored.",
		}),
		RiskHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_risk_hits_total",
			Help: "Fragments with a positive risk verdict.",
		}),
		EmbeddingErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_embedding_errors_total",
			Help: "Embedding calls that failed.",
		}),
		CrawlSessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_crawl_sessions_total",
			Help: "Crawl sessions started.",
		}),
		Investigations: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigia_investigations_total",
			Help: "Investigation runs started.",
		}),
	}
}

// NewDefault registers on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// NewNoop registers on a private registry that is never exposed, for
// tests and partially wired callers.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}
