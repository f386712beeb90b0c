package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-resource-bot/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CatalogRepository reads the resource table from PostgreSQL.
type CatalogRepository struct {
	db    *sqlx.DB
	table string
}

// NewCatalogRepository constructs the repository for the given table.
func NewCatalogRepository(db *sqlx.DB, table string) (*CatalogRepository, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &CatalogRepository{db: db, table: table}, nil
}

// LoadResources returns every resource row ordered by id.
func (r *CatalogRepository) LoadResources(ctx context.Context) ([]models.Resource, error) {
	query := fmt.Sprintf(`SELECT CAST(id AS TEXT) AS id, faculty, subject, subject_code,
CAST(semester AS TEXT) AS semester, CAST(module AS TEXT) AS module, resource_link
FROM %s ORDER BY id ASC`, r.table)

	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query); err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", r.table, err)
	}
	for i := range resources {
		resources[i].Semester = NormalizeNumeric(resources[i].Semester)
		resources[i].Module = NormalizeNumeric(resources[i].Module)
	}
	return resources, nil
}
