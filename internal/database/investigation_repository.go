package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigialabs/vigia/internal/domain"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("database: not found")

// InvestigationRepository persists executions, documents, and fragments.
// Every write runs in its own short transaction so one bad row never takes
// down the rest of an ingestion run.
type InvestigationRepository struct {
	db *sqlx.DB
}

// NewInvestigationRepository creates the repository.
func NewInvestigationRepository(db *sqlx.DB) *InvestigationRepository {
	return &InvestigationRepository{db: db}
}

// CreateExecution inserts an execution record and fills in its id.
func (r *InvestigationRepository) CreateExecution(ctx context.Context, execution *domain.Execution) error {
	query := `
		INSERT INTO executions (query, started_at, objective_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if execution.StartedAt.IsZero() {
		execution.StartedAt = time.Now()
	}

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowContext(ctx, query,
			execution.Query, execution.StartedAt, execution.ObjectiveID,
		).Scan(&execution.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}
	return nil
}

// GetObjectiveByName looks up an investigation objective.
func (r *InvestigationRepository) GetObjectiveByName(ctx context.Context, name string) (*domain.Objective, error) {
	var objective domain.Objective
	query := `
		SELECT id, name, affiliation
		FROM objectives
		WHERE name = $1
	`

	err := r.db.GetContext(ctx, &objective, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get objective: %w", err)
	}
	return &objective, nil
}

// CreateDocument inserts a document and fills in its id.
func (r *InvestigationRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (execution_id, title, url, full_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowContext(ctx, query,
			doc.ExecutionID, doc.Title, doc.URL, doc.FullText, doc.CreatedAt,
		).Scan(&doc.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// CreateDocumentVector stores a document-level embedding.
func (r *InvestigationRepository) CreateDocumentVector(ctx context.Context, dv *domain.DocumentVector) error {
	query := `
		INSERT INTO document_vectors (document_id, embedding)
		VALUES ($1, $2)
	`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		_, execErr := tx.ExecContext(ctx, query, dv.DocumentID, dv.Embedding)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to create document vector: %w", err)
	}
	return nil
}

// CreateFragment inserts a fragment and fills in its id.
func (r *InvestigationRepository) CreateFragment(ctx context.Context, fragment *domain.Fragment) error {
	query := `
		INSERT INTO fragments (document_id, sequence, text)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowContext(ctx, query,
			fragment.DocumentID, fragment.Sequence, fragment.Text,
		).Scan(&fragment.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to create fragment: %w", err)
	}
	return nil
}

// CreateFragmentVector stores a fragment embedding with its risk verdict.
func (r *InvestigationRepository) CreateFragmentVector(ctx context.Context, fv *domain.FragmentVector) error {
	query := `
		INSERT INTO fragment_vectors (fragment_id, embedding, confidence, is_risk, risk_label_id, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if fv.AnalyzedAt.IsZero() {
		fv.AnalyzedAt = time.Now()
	}

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		_, execErr := tx.ExecContext(ctx, query,
			fv.FragmentID, fv.Embedding, fv.Confidence, fv.IsRisk, fv.RiskLabelID, fv.AnalyzedAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to create fragment vector: %w", err)
	}
	return nil
}

// GetOrCreateRiskLabel resolves a label name to its id, creating the label
// when missing. The upsert keeps concurrent callers from racing a
// check-then-insert.
func (r *InvestigationRepository) GetOrCreateRiskLabel(ctx context.Context, name, description string) (int64, error) {
	query := `
		INSERT INTO risk_labels (name, description)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowContext(ctx, query, name, description).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get or create risk label: %w", err)
	}
	return id, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (r *InvestigationRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
