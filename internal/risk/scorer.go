// Package risk scores fragment embeddings against the labeled reference
// corpus by nearest-neighbor similarity.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vigialabs/vigia/internal/database"
	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/logger"
)

// MaxRiskDistance is the strict cosine-distance cutoff for a positive
// verdict. A match at exactly this distance is not a risk.
const MaxRiskDistance = 0.45

// LabelNoRisk is the verdict label when no reference matches under the
// threshold.
const LabelNoRisk = "Sin Riesgo"

// ignoredLabels are reference labels that never produce a positive
// verdict, matched by exact name. The label still carries through to the
// assessment; only the risk flag is suppressed.
var ignoredLabels = map[string]struct{}{
	LabelNoRisk: {},
	"Ruido":     {},
	"Salud":     {},
	"General":   {},
}

// Assessment is the verdict for one fragment embedding.
type Assessment struct {
	IsRisk     bool    `json:"is_risk"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
	Evidence   string  `json:"evidence,omitempty"`
}

// ReferenceFinder locates the nearest labeled reference to an embedding.
type ReferenceFinder interface {
	NearestReference(ctx context.Context, embedding domain.Vector) (*domain.ReferenceMatch, error)
}

// Scorer assigns risk verdicts.
type Scorer struct {
	finder ReferenceFinder
	logger logger.Interface
}

// NewScorer builds a scorer.
func NewScorer(finder ReferenceFinder, log logger.Interface) *Scorer {
	return &Scorer{finder: finder, logger: log.WithComponent("risk")}
}

// Score assesses one embedding. An empty reference corpus yields a
// negative verdict, not an error.
func (s *Scorer) Score(ctx context.Context, embedding domain.Vector) (Assessment, error) {
	match, err := s.finder.NearestReference(ctx, embedding)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return Assessment{Label: LabelNoRisk}, nil
		}
		return Assessment{}, fmt.Errorf("nearest reference: %w", err)
	}

	assessment := Assessment{Label: LabelNoRisk, Distance: match.Distance}
	if match.Distance >= MaxRiskDistance {
		return assessment, nil
	}

	assessment.Label = match.Label
	assessment.Confidence = round4(1 - match.Distance)
	assessment.Evidence = match.Evidence

	if _, ignored := ignoredLabels[match.Label]; ignored {
		s.logger.Debug("nearest reference ignored by label",
			"label", match.Label,
			"distance", match.Distance,
		)
		return assessment, nil
	}

	assessment.IsRisk = true
	return assessment, nil
}

// round4 rounds to four decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
