package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/noah-isme/study-resource-bot/internal/models"
)

// catalogColumns maps accepted header spellings onto resource fields.
var catalogColumns = map[string]string{
	"id":            "id",
	"faculty":       "faculty",
	"subject":       "subject",
	"subject-code":  "subject_code",
	"subject_code":  "subject_code",
	"semester":      "semester",
	"module":        "module",
	"resource-link": "resource_link",
	"resource_link": "resource_link",
}

var requiredCatalogColumns = []string{"id", "faculty", "subject", "subject_code", "semester", "module", "resource_link"}

// CatalogCSVRepository reads the resource table from a CSV export.
type CatalogCSVRepository struct {
	path string
}

// NewCatalogCSVRepository constructs a CSV-backed catalog loader.
func NewCatalogCSVRepository(path string) *CatalogCSVRepository {
	return &CatalogCSVRepository{path: path}
}

// LoadResources parses every row of the CSV file in file order.
func (r *CatalogCSVRepository) LoadResources(ctx context.Context) ([]models.Resource, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", r.path, err)
	}
	defer file.Close() //nolint:errcheck

	return ParseCatalogCSV(ctx, file)
}

// ParseCatalogCSV decodes catalog rows from any reader.
func ParseCatalogCSV(ctx context.Context, src io.Reader) ([]models.Resource, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := catalogColumns[key]; ok {
			index[field] = i
		}
	}
	for _, field := range requiredCatalogColumns {
		if _, ok := index[field]; !ok {
			return nil, fmt.Errorf("catalog missing column %q", field)
		}
	}

	resources := make([]models.Resource, 0)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}
		cell := func(field string) string {
			i := index[field]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		resources = append(resources, models.Resource{
			ID:          NormalizeNumeric(cell("id")),
			Faculty:     cell("faculty"),
			Subject:     cell("subject"),
			SubjectCode: cell("subject_code"),
			Semester:    NormalizeNumeric(cell("semester")),
			Module:      NormalizeNumeric(cell("module")),
			Link:        cell("resource_link"),
		})
	}

	return resources, nil
}

// NormalizeNumeric turns spreadsheet floats such as "3.0" into "3" so they
// compare equal to the digits users type.
func NormalizeNumeric(value string) string {
	if !strings.HasSuffix(value, ".0") {
		return value
	}
	whole := strings.TrimSuffix(value, ".0")
	if whole == "" {
		return value
	}
	for _, r := range whole {
		if r < '0' || r > '9' {
			return value
		}
	}
	return whole
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
