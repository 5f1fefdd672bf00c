// Package ingest orchestrates target investigations: search, fetch,
// persist, fragment, embed, and risk-score, producing a structured report.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vigialabs/vigia/internal/database"
	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/embed"
	"github.com/vigialabs/vigia/internal/extract"
	"github.com/vigialabs/vigia/internal/fetch"
	"github.com/vigialabs/vigia/internal/fragment"
	"github.com/vigialabs/vigia/internal/logger"
	"github.com/vigialabs/vigia/internal/metrics"
	"github.com/vigialabs/vigia/internal/risk"
	"github.com/vigialabs/vigia/internal/search"
)

// documentEmbedMaxChars bounds the whole-document embedding input.
const documentEmbedMaxChars = 2000

// findingExcerptChars bounds the evidence excerpt kept per risk finding.
const findingExcerptChars = 250

// riskLabelDescription is stored when a verdict creates a new label row.
const riskLabelDescription = "Detectado por análisis semántico de fragmentos"

// Sentinel errors.
var (
	ErrEmptyTarget = errors.New("ingest: target must be non-empty")
	ErrAuditFailed = errors.New("ingest: audit record could not be created")
)

// Store is the persistence surface the investigator needs.
type Store interface {
	CreateExecution(ctx context.Context, execution *domain.Execution) error
	GetObjectiveByName(ctx context.Context, name string) (*domain.Objective, error)
	CreateDocument(ctx context.Context, doc *domain.Document) error
	CreateDocumentVector(ctx context.Context, dv *domain.DocumentVector) error
	CreateFragment(ctx context.Context, f *domain.Fragment) error
	CreateFragmentVector(ctx context.Context, fv *domain.FragmentVector) error
	GetOrCreateRiskLabel(ctx context.Context, name, description string) (int64, error)
}

// Scorer assigns risk verdicts to fragment embeddings.
type Scorer interface {
	Score(ctx context.Context, embedding domain.Vector) (risk.Assessment, error)
}

// Corroborator counts near-duplicate fragments already on record, used as
// corroboration evidence on risk findings.
type Corroborator interface {
	Repetitions(ctx context.Context, embedding domain.Vector, fragmentID int64) (int, error)
}

// Finding is one positive risk verdict surfaced in the report.
type Finding struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Excerpt     string  `json:"excerpt"`
	SourceURL   string  `json:"source_url"`
	Repetitions int     `json:"repetitions"`
}

// Report is the structured outcome of one investigation run. The report
// is always produced, whatever happened along the way.
type Report struct {
	Target      string    `json:"target"`
	ExecutionID int64     `json:"execution_id"`
	Processed   int       `json:"processed"`
	Errors      int       `json:"errors"`
	Vectors     int       `json:"vectors"`
	Findings    []Finding `json:"findings,omitempty"`
	Log         []string  `json:"log"`
}

// Investigator runs the ingestion pipeline for a named target.
type Investigator struct {
	store      Store
	searcher   search.Searcher
	fetcher    fetch.Fetcher
	extractor  *extract.Extractor
	embedder   embed.Embedder
	scorer     Scorer
	radar      Corroborator
	metrics    *metrics.Metrics
	logger     logger.Interface
	windowSize int
}

// Params bundles the investigator's collaborators.
type Params struct {
	Store      Store
	Searcher   search.Searcher
	Fetcher    fetch.Fetcher
	Extractor  *extract.Extractor
	Embedder   embed.Embedder
	Scorer     Scorer
	Radar      Corroborator
	Metrics    *metrics.Metrics
	Logger     logger.Interface
	WindowSize int
}

// New builds an investigator.
func New(p Params) *Investigator {
	if p.WindowSize <= 0 {
		p.WindowSize = fragment.DefaultWindowSize
	}
	if p.Metrics == nil {
		p.Metrics = metrics.NewNoop()
	}
	return &Investigator{
		store:      p.Store,
		searcher:   p.Searcher,
		fetcher:    p.Fetcher,
		extractor:  p.Extractor,
		embedder:   p.Embedder,
		scorer:     p.Scorer,
		radar:      p.Radar,
		metrics:    p.Metrics,
		logger:     p.Logger.WithComponent("ingest"),
		windowSize: p.WindowSize,
	}
}

// Investigate runs the full pipeline for one target. Only an empty target
// or a failed audit insert abort the run; every later failure is isolated
// to its source or fragment and counted.
func (inv *Investigator) Investigate(ctx context.Context, target string) (*Report, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrEmptyTarget
	}

	inv.metrics.Investigations.Inc()
	report := &Report{Target: target}
	report.logf("[INFO] inicio proceso: %s", strings.ToUpper(target))

	execution, err := inv.audit(ctx, target, report)
	if err != nil {
		return report, err
	}
	report.ExecutionID = execution.ID

	urls := inv.searchSources(ctx, target, report)
	if len(urls) == 0 {
		report.logf("[INFO] sin resultados en búsqueda web")
		return report, nil
	}

	for i, pageURL := range urls {
		report.logf("[FUENTE %d/%d] %s", i+1, len(urls), pageURL)
		inv.processSource(ctx, execution.ID, pageURL, report)
	}

	inv.logger.Info("investigation finished",
		"target", target,
		"execution_id", execution.ID,
		"processed", report.Processed,
		"errors", report.Errors,
		"vectors", report.Vectors,
		"findings", len(report.Findings),
	)
	return report, nil
}

// audit creates the execution record. Failure here is fatal: nothing may
// be persisted without its audit anchor.
func (inv *Investigator) audit(ctx context.Context, target string, report *Report) (*domain.Execution, error) {
	execution := &domain.Execution{Query: "Investigación: " + target}

	objective, err := inv.store.GetObjectiveByName(ctx, target)
	if err == nil {
		execution.ObjectiveID = &objective.ID
	} else if !errors.Is(err, database.ErrNotFound) {
		report.logf("[AUDITORIA] consulta de objetivo falló: %v", err)
	}

	if err := inv.store.CreateExecution(ctx, execution); err != nil {
		report.logf("[AUDITORIA ERROR] %v", err)
		return nil, fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	report.logf("[AUDITORIA] registro creado id: %d", execution.ID)
	return execution, nil
}

// searchSources queries the web search API. Search failures end the run
// with an empty source list, not an error.
func (inv *Investigator) searchSources(ctx context.Context, target string, report *Report) []string {
	query := search.TargetQuery(target)
	report.logf("[BUSQUEDA] consulta: %q", query)

	results, err := inv.searcher.Search(ctx, query)
	if err != nil {
		report.logf("[BUSQUEDA ERROR] %v", err)
		return nil
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.Link != "" {
			urls = append(urls, r.Link)
		}
	}
	report.logf("[BUSQUEDA] éxito: %d resultados", len(urls))
	return urls
}

// processSource handles one source URL end to end. Failures are counted
// and logged; they never abort the remaining sources.
func (inv *Investigator) processSource(ctx context.Context, executionID int64, pageURL string, report *Report) {
	result, err := inv.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		inv.metrics.FetchErrors.Inc()
		report.Errors++
		report.logf("  [SCRAPER FALLO] %v", err)
		return
	}
	inv.metrics.PagesFetched.Inc()

	content, err := inv.extractor.Extract(pageURL, result.HTML)
	if err != nil {
		report.Errors++
		report.logf("  [EXTRACCION FALLO] %v", err)
		return
	}

	text := content.ArticleText
	if len([]rune(text)) < domain.MinDocumentTextLength {
		report.logf("  [INFO] contenido insuficiente (<%d chars)", domain.MinDocumentTextLength)
		return
	}

	title := content.Title
	if title == "" {
		title = "Sin Título"
	}

	doc := &domain.Document{
		ExecutionID: executionID,
		Title:       title,
		URL:         pageURL,
		FullText:    text,
	}
	if err := inv.store.CreateDocument(ctx, doc); err != nil {
		report.Errors++
		report.logf("  [DB ERROR] documento no guardado: %v", err)
		return
	}
	inv.metrics.DocumentsStored.Inc()
	report.logf("  [DB] documento guardado id: %d", doc.ID)

	inv.embedDocument(ctx, doc, report)

	vectors := inv.processFragments(ctx, doc, report)
	report.Processed++
	report.Vectors += vectors
}

// embedDocument stores the whole-document embedding, best effort.
func (inv *Investigator) embedDocument(ctx context.Context, doc *domain.Document, report *Report) {
	input := truncateRunes(doc.FullText, documentEmbedMaxChars)
	vector, err := inv.embedder.Embed(ctx, input)
	if err != nil {
		inv.metrics.EmbeddingErrors.Inc()
		report.logf("  [IA] embedding global falló: %v", err)
		return
	}

	dv := &domain.DocumentVector{DocumentID: doc.ID, Embedding: vector}
	if err := inv.store.CreateDocumentVector(ctx, dv); err != nil {
		report.logf("  [DB ERROR] vector de documento no guardado: %v", err)
		return
	}
	report.logf("  [IA] embedding global guardado")
}

// processFragments splits the document and embeds and scores each piece.
// Returns the number of fragment vectors written.
func (inv *Investigator) processFragments(ctx context.Context, doc *domain.Document, report *Report) int {
	pieces, strategy := fragment.Split(doc.FullText, inv.windowSize)
	if len(pieces) == 0 {
		report.logf("  [INFO] sin fragmentos útiles")
		return 0
	}
	report.logf("  [FRAGMENTACION] %d fragmentos (%s)", len(pieces), strategy)

	vectors := 0
	for _, piece := range pieces {
		frag := &domain.Fragment{
			DocumentID: doc.ID,
			Sequence:   piece.Sequence,
			Text:       piece.Text,
		}
		if err := inv.store.CreateFragment(ctx, frag); err != nil {
			report.logf("  [DB ERROR] fragmento %d no guardado: %v", piece.Sequence, err)
			continue
		}

		vector, err := inv.embedder.Embed(ctx, frag.Text)
		if err != nil {
			inv.metrics.EmbeddingErrors.Inc()
			report.logf("  [IA] embedding de fragmento %d falló: %v", piece.Sequence, err)
			continue
		}

		assessment, err := inv.scorer.Score(ctx, vector)
		if err != nil {
			report.logf("  [RIESGO] análisis de fragmento %d falló: %v", piece.Sequence, err)
			continue
		}

		fv := &domain.FragmentVector{
			FragmentID: frag.ID,
			Embedding:  vector,
			Confidence: assessment.Confidence,
			IsRisk:     assessment.IsRisk,
		}
		// Every stored analysis links its label, negatives included; the
		// radar query filters on the label link being present.
		if assessment.Label != "" {
			labelID, labelErr := inv.store.GetOrCreateRiskLabel(ctx, assessment.Label, riskLabelDescription)
			if labelErr != nil {
				report.logf("  [DB ERROR] etiqueta %q no resuelta: %v", assessment.Label, labelErr)
			} else {
				fv.RiskLabelID = &labelID
			}
		}

		if err := inv.store.CreateFragmentVector(ctx, fv); err != nil {
			report.logf("  [DB ERROR] análisis de fragmento %d no guardado: %v", piece.Sequence, err)
			continue
		}
		inv.metrics.FragmentsScored.Inc()
		vectors++

		if assessment.IsRisk {
			inv.metrics.RiskHits.Inc()
			finding := Finding{
				Label:      assessment.Label,
				Confidence: assessment.Confidence,
				Excerpt:    truncateRunes(frag.Text, findingExcerptChars),
				SourceURL:  doc.URL,
			}
			if inv.radar != nil {
				repetitions, radarErr := inv.radar.Repetitions(ctx, vector, frag.ID)
				if radarErr != nil {
					report.logf("  [RADAR] corroboración de fragmento %d falló: %v", piece.Sequence, radarErr)
				} else {
					finding.Repetitions = repetitions
				}
			}
			report.Findings = append(report.Findings, finding)
		}
	}
	return vectors
}

// logf appends one line to the report's technical log.
func (r *Report) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Render produces the human-readable technical report.
func (r *Report) Render() string {
	var sb strings.Builder
	divider := strings.Repeat("=", 50)

	fmt.Fprintf(&sb, "INFORME TÉCNICO: %s\n%s\n", strings.ToUpper(r.Target), divider)
	fmt.Fprintf(&sb, "Fuentes Procesadas: %d\n", r.Processed)
	fmt.Fprintf(&sb, "Errores Detectados: %d\n", r.Errors)
	fmt.Fprintf(&sb, "Vectores Generados: %d\n%s\n", r.Vectors, divider)

	if len(r.Findings) > 0 {
		sb.WriteString("\nHALLAZGOS DE RIESGO:\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&sb, "\n[ALERTA] %s (confianza %.4f)\nContexto: %q\nOrigen: %s\n",
				f.Label, f.Confidence, f.Excerpt, f.SourceURL)
			if f.Repetitions > 0 {
				fmt.Fprintf(&sb, "Corroboración: %d fragmentos similares previos\n", f.Repetitions)
			}
		}
	} else {
		sb.WriteString("\n[RESULTADO NEGATIVO] Sin indicadores de riesgo detectados.\n")
	}

	sb.WriteString("\n--- LOG TÉCNICO ---\n")
	sb.WriteString(strings.Join(r.Log, "\n"))
	return sb.String()
}

// truncateRunes cuts a string to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
