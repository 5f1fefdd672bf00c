package database_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/database"
	"github.com/vigialabs/vigia/internal/domain"
)

func TestNearestReference(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewKnowledgeRepository(db)

	rows := sqlmock.NewRows([]string{"label", "evidence", "distance"}).
		AddRow("Extorsión", "cobro de vacunas a comerciantes", 0.31)
	mock.ExpectQuery(regexp.QuoteMeta("FROM knowledge_vectors")).
		WithArgs("[0.1,0.9]").
		WillReturnRows(rows)

	match, err := repo.NearestReference(context.Background(), domain.Vector{0.1, 0.9})
	require.NoError(t, err)
	assert.Equal(t, "Extorsión", match.Label)
	assert.InDelta(t, 0.31, match.Distance, 1e-9)
}

func TestNearestReference_EmptyCorpus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewKnowledgeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM knowledge_vectors")).
		WillReturnRows(sqlmock.NewRows([]string{"label", "evidence", "distance"}))

	_, err := repo.NearestReference(context.Background(), domain.Vector{0.1})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCountNearDuplicates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := database.NewKnowledgeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM fragment_vectors")).
		WithArgs("[0.1,0.9]", int64(33), 0.1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountNearDuplicates(context.Background(), domain.Vector{0.1, 0.9}, 33, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
