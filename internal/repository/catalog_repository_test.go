package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryLoadResources(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo, err := NewCatalogRepository(db, "resources")
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "faculty", "subject", "subject_code", "semester", "module", "resource_link"}).
		AddRow("42", "AIML", "ARTIFICIAL INTELLIGENCE", "BCS515C", "5", "3.0", "https://example.com/ai-m3").
		AddRow("50", "AIML", "ANALYSIS AND DESIGN OF ALGORITHMS", "BAD402", "4.0", "1", "https://example.com/ada-m1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT CAST(id AS TEXT) AS id, faculty")).
		WillReturnRows(rows)

	resources, err := repo.LoadResources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)
	require.Equal(t, "42", resources[0].ID)
	require.Equal(t, "3", resources[0].Module)
	require.Equal(t, "4", resources[1].Semester)
	require.Equal(t, "https://example.com/ada-m1", resources[1].Link)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryQueryError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()

	repo, err := NewCatalogRepository(db, "catalog.resources")
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM catalog.resources ORDER BY id ASC")).
		WillReturnError(errors.New("relation does not exist"))

	_, err = repo.LoadResources(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryRejectsUnsafeTable(t *testing.T) {
	_, err := NewCatalogRepository(nil, "resources; DROP TABLE users")
	require.Error(t, err)
}
