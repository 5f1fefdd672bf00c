package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/database"
	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/extract"
	"github.com/vigialabs/vigia/internal/fetch"
	"github.com/vigialabs/vigia/internal/ingest"
	"github.com/vigialabs/vigia/internal/logger"
	"github.com/vigialabs/vigia/internal/metrics"
	"github.com/vigialabs/vigia/internal/risk"
	"github.com/vigialabs/vigia/internal/search"
)

type stubStore struct {
	execErr   error
	objective *domain.Objective
	nextID    int64

	documents       []*domain.Document
	fragments       []*domain.Fragment
	fragmentVectors []*domain.FragmentVector
	documentVectors []*domain.DocumentVector
	labels          []string
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) CreateExecution(_ context.Context, e *domain.Execution) error {
	if s.execErr != nil {
		return s.execErr
	}
	e.ID = s.id()
	return nil
}

func (s *stubStore) GetObjectiveByName(_ context.Context, _ string) (*domain.Objective, error) {
	if s.objective == nil {
		return nil, database.ErrNotFound
	}
	return s.objective, nil
}

func (s *stubStore) CreateDocument(_ context.Context, d *domain.Document) error {
	d.ID = s.id()
	s.documents = append(s.documents, d)
	return nil
}

func (s *stubStore) CreateDocumentVector(_ context.Context, dv *domain.DocumentVector) error {
	s.documentVectors = append(s.documentVectors, dv)
	return nil
}

func (s *stubStore) CreateFragment(_ context.Context, f *domain.Fragment) error {
	f.ID = s.id()
	s.fragments = append(s.fragments, f)
	return nil
}

func (s *stubStore) CreateFragmentVector(_ context.Context, fv *domain.FragmentVector) error {
	s.fragmentVectors = append(s.fragmentVectors, fv)
	return nil
}

func (s *stubStore) GetOrCreateRiskLabel(_ context.Context, name, _ string) (int64, error) {
	s.labels = append(s.labels, name)
	return 99, nil
}

type stubSearcher struct {
	results []search.Result
	err     error
}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]search.Result, error) {
	return s.results, s.err
}

type mapFetcher struct {
	pages map[string]string
}

func (m *mapFetcher) Name() string { return "map" }

func (m *mapFetcher) Fetch(_ context.Context, pageURL string) (*fetch.Result, error) {
	html, ok := m.pages[pageURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return &fetch.Result{URL: pageURL, HTML: []byte(html), StatusCode: 200}, nil
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.Vector, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.Vector{0.1, 0.2}, nil
}

type stubScorer struct {
	assessment risk.Assessment
}

func (s *stubScorer) Score(_ context.Context, _ domain.Vector) (risk.Assessment, error) {
	return s.assessment, nil
}

const sourceURL = "https://prensa.example.com/nota/1"

func articleHTML(body string) string {
	return `<html><head><title>Nota de prensa</title></head>
	<body><article class="article-content"><h1>Nota de prensa</h1><p>` + body + `</p></article></body></html>`
}

func longBody() string {
	return strings.Repeat("La contraloría documentó presuntas irregularidades en la contratación de obras públicas del municipio. ", 3)
}

func newInvestigator(store *stubStore, searcher *stubSearcher, fetcher fetch.Fetcher, scorer ingest.Scorer, embedder *stubEmbedder) *ingest.Investigator {
	return ingest.New(ingest.Params{
		Store:     store,
		Searcher:  searcher,
		Fetcher:   fetcher,
		Extractor: extract.New(),
		Embedder:  embedder,
		Scorer:    scorer,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Logger:    logger.NewNoop(),
	})
}

func TestInvestigate_EmptyTarget(t *testing.T) {
	t.Parallel()

	inv := newInvestigator(&stubStore{}, &stubSearcher{}, &mapFetcher{}, &stubScorer{}, &stubEmbedder{})
	_, err := inv.Investigate(context.Background(), "   ")
	assert.ErrorIs(t, err, ingest.ErrEmptyTarget)
}

func TestInvestigate_AuditFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := &stubStore{execErr: errors.New("db down")}
	inv := newInvestigator(store, &stubSearcher{}, &mapFetcher{}, &stubScorer{}, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.ErrorIs(t, err, ingest.ErrAuditFailed)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.Log)
	assert.Empty(t, store.documents)
}

func TestInvestigate_EmptySearchEndsRun(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	inv := newInvestigator(store, &stubSearcher{}, &mapFetcher{}, &stubScorer{}, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Empty(t, store.documents)
	assert.Contains(t, strings.Join(report.Log, "\n"), "sin resultados")
}

func TestInvestigate_ShortContentSkipped(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	fetcher := &mapFetcher{pages: map[string]string{
		sourceURL: `<html><head><title>Corta</title></head><body><p>Texto breve.</p></body></html>`,
	}}
	inv := newInvestigator(store, searcher, fetcher, &stubScorer{}, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Zero(t, report.Errors)
	assert.Empty(t, store.documents)
	assert.Contains(t, strings.Join(report.Log, "\n"), "contenido insuficiente")
}

func TestInvestigate_DocumentLengthBoundary(t *testing.T) {
	t.Parallel()

	page := func(n int) string {
		return `<html><head><title>Nota</title></head><body><p>` +
			strings.Repeat("a", n) + `</p></body></html>`
	}

	t.Run("one under the minimum is skipped", func(t *testing.T) {
		t.Parallel()

		store := &stubStore{}
		searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
		fetcher := &mapFetcher{pages: map[string]string{sourceURL: page(domain.MinDocumentTextLength - 1)}}
		inv := newInvestigator(store, searcher, fetcher, &stubScorer{}, &stubEmbedder{})

		report, err := inv.Investigate(context.Background(), "objetivo")
		require.NoError(t, err)
		assert.Zero(t, report.Processed)
		assert.Zero(t, report.Errors)
		assert.Empty(t, store.documents)
	})

	t.Run("exact minimum is persisted and fragmented", func(t *testing.T) {
		t.Parallel()

		store := &stubStore{}
		searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
		fetcher := &mapFetcher{pages: map[string]string{sourceURL: page(domain.MinDocumentTextLength)}}
		inv := newInvestigator(store, searcher, fetcher, &stubScorer{}, &stubEmbedder{})

		report, err := inv.Investigate(context.Background(), "objetivo")
		require.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		require.Len(t, store.documents, 1)
		assert.Len(t, []rune(store.documents[0].FullText), domain.MinDocumentTextLength)
		assert.NotEmpty(t, store.fragments)
	})
}

func TestInvestigate_FetchFailureCounted(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	inv := newInvestigator(store, searcher, &mapFetcher{}, &stubScorer{}, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Zero(t, report.Processed)
}

func TestInvestigate_HappyPathWithRiskFinding(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	fetcher := &mapFetcher{pages: map[string]string{sourceURL: articleHTML(longBody())}}
	scorer := &stubScorer{assessment: risk.Assessment{
		IsRisk:     true,
		Label:      "Corrupción",
		Confidence: 0.81,
		Distance:   0.19,
	}}
	inv := newInvestigator(store, searcher, fetcher, scorer, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Zero(t, report.Errors)
	require.NotEmpty(t, store.documents)
	assert.Equal(t, report.ExecutionID, store.documents[0].ExecutionID)
	require.NotEmpty(t, store.fragments)
	assert.Equal(t, len(store.fragmentVectors), report.Vectors)
	require.NotEmpty(t, store.fragmentVectors)
	require.NotNil(t, store.fragmentVectors[0].RiskLabelID)
	assert.Equal(t, int64(99), *store.fragmentVectors[0].RiskLabelID)

	require.NotEmpty(t, report.Findings)
	finding := report.Findings[0]
	assert.Equal(t, "Corrupción", finding.Label)
	assert.Equal(t, sourceURL, finding.SourceURL)
	assert.LessOrEqual(t, len([]rune(finding.Excerpt)), 250)

	// Whole-document embedding stored best effort.
	require.Len(t, store.documentVectors, 1)
	assert.Equal(t, store.documents[0].ID, store.documentVectors[0].DocumentID)

	rendered := report.Render()
	assert.Contains(t, rendered, "INFORME TÉCNICO: OBJETIVO")
	assert.Contains(t, rendered, "HALLAZGOS DE RIESGO")
}

func TestInvestigate_NegativeVerdictsKeepLabelLink(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	fetcher := &mapFetcher{pages: map[string]string{sourceURL: articleHTML(longBody())}}
	scorer := &stubScorer{assessment: risk.Assessment{
		IsRisk:     false,
		Label:      "Sin Riesgo",
		Confidence: 0.55,
		Distance:   0.45,
	}}
	inv := newInvestigator(store, searcher, fetcher, scorer, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)

	assert.Empty(t, report.Findings)
	require.NotEmpty(t, store.fragmentVectors)
	for _, fv := range store.fragmentVectors {
		assert.False(t, fv.IsRisk)
		require.NotNil(t, fv.RiskLabelID)
		assert.Equal(t, int64(99), *fv.RiskLabelID)
	}
	assert.Contains(t, store.labels, "Sin Riesgo")
}

func TestInvestigate_EmbeddingFailureSkipsFragmentOnly(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	fetcher := &mapFetcher{pages: map[string]string{sourceURL: articleHTML(longBody())}}
	inv := newInvestigator(store, searcher, fetcher, &stubScorer{}, &stubEmbedder{err: errors.New("modelo caído")})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)

	// The document persists and fragments are created, but no vectors.
	assert.Equal(t, 1, report.Processed)
	assert.NotEmpty(t, store.fragments)
	assert.Empty(t, store.fragmentVectors)
	assert.Empty(t, store.documentVectors)
	assert.Zero(t, report.Vectors)
}

type stubRadar struct {
	repetitions int
	err         error
	calls       int
}

func (s *stubRadar) Repetitions(_ context.Context, _ domain.Vector, _ int64) (int, error) {
	s.calls++
	return s.repetitions, s.err
}

func TestInvestigate_RiskFindingsCorroborated(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	fetcher := &mapFetcher{pages: map[string]string{sourceURL: articleHTML(longBody())}}
	scorer := &stubScorer{assessment: risk.Assessment{
		IsRisk:     true,
		Label:      "Corrupción",
		Confidence: 0.81,
		Distance:   0.19,
	}}
	radar := &stubRadar{repetitions: 3}

	inv := ingest.New(ingest.Params{
		Store:     store,
		Searcher:  searcher,
		Fetcher:   fetcher,
		Extractor: extract.New(),
		Embedder:  &stubEmbedder{},
		Scorer:    scorer,
		Radar:     radar,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Logger:    logger.NewNoop(),
	})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)

	require.NotEmpty(t, report.Findings)
	assert.Equal(t, 3, report.Findings[0].Repetitions)
	assert.Equal(t, len(report.Findings), radar.calls)
	assert.Contains(t, report.Render(), "Corroboración: 3 fragmentos similares previos")
}

func TestInvestigate_DefaultsMetricsWhenUnset(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	searcher := &stubSearcher{results: []search.Result{{Link: sourceURL}}}
	inv := ingest.New(ingest.Params{
		Store:     store,
		Searcher:  searcher,
		Fetcher:   &mapFetcher{},
		Extractor: extract.New(),
		Embedder:  &stubEmbedder{},
		Scorer:    &stubScorer{},
		Logger:    logger.NewNoop(),
	})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
}

func TestInvestigate_ObjectiveLinked(t *testing.T) {
	t.Parallel()

	objectiveID := int64(12)
	store := &stubStore{objective: &domain.Objective{ID: objectiveID, Name: "objetivo"}}
	inv := newInvestigator(store, &stubSearcher{}, &mapFetcher{}, &stubScorer{}, &stubEmbedder{})

	report, err := inv.Investigate(context.Background(), "objetivo")
	require.NoError(t, err)
	assert.NotZero(t, report.ExecutionID)
}
