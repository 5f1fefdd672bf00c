package risk

import (
	"context"
	"fmt"

	"github.com/vigialabs/vigia/internal/domain"
)

// RadarMaxDistance is the near-duplicate cutoff: fragments closer than
// this are treated as repetitions of the same fact.
const RadarMaxDistance = 0.1

// DuplicateCounter counts stored fragment vectors near an embedding.
type DuplicateCounter interface {
	CountNearDuplicates(ctx context.Context, embedding domain.Vector, excludeFragmentID int64, maxDistance float64) (int, error)
}

// Radar measures how often a fact repeats across the stored corpus. The
// fragment itself is excluded; siblings from the same document count.
type Radar struct {
	counter DuplicateCounter
}

// NewRadar builds a radar.
func NewRadar(counter DuplicateCounter) *Radar {
	return &Radar{counter: counter}
}

// Repetitions counts near-duplicates of the fragment's embedding.
func (r *Radar) Repetitions(ctx context.Context, embedding domain.Vector, fragmentID int64) (int, error) {
	count, err := r.counter.CountNearDuplicates(ctx, embedding, fragmentID, RadarMaxDistance)
	if err != nil {
		return 0, fmt.Errorf("count near duplicates: %w", err)
	}
	return count, nil
}
