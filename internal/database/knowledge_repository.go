package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vigialabs/vigia/internal/domain"
)

// KnowledgeRepository queries the labeled reference corpus by vector
// similarity. The `<=>` operator is pgvector cosine distance.
type KnowledgeRepository struct {
	db *sqlx.DB
}

// NewKnowledgeRepository creates the repository.
func NewKnowledgeRepository(db *sqlx.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// NearestReference returns the closest labeled reference fragment to the
// embedding, or ErrNotFound when the corpus is empty.
func (r *KnowledgeRepository) NearestReference(ctx context.Context, embedding domain.Vector) (*domain.ReferenceMatch, error) {
	query := `
		SELECT l.name AS label,
		       k.evidence AS evidence,
		       k.embedding <=> $1 AS distance
		FROM knowledge_vectors k
		JOIN risk_labels l ON l.id = k.risk_label_id
		ORDER BY k.embedding <=> $1
		LIMIT 1
	`

	var match domain.ReferenceMatch
	err := r.db.GetContext(ctx, &match, query, embedding)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query nearest reference: %w", err)
	}
	return &match, nil
}

// CountNearDuplicates counts stored fragment vectors within maxDistance of
// the embedding, excluding the fragment itself. Fragments from the same
// document still count; repetition across a document is itself a signal.
func (r *KnowledgeRepository) CountNearDuplicates(
	ctx context.Context, embedding domain.Vector, excludeFragmentID int64, maxDistance float64,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM fragment_vectors
		WHERE fragment_id != $2
		  AND embedding <=> $1 < $3
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, embedding, excludeFragmentID, maxDistance)
	if err != nil {
		return 0, fmt.Errorf("failed to count near duplicates: %w", err)
	}
	return count, nil
}
