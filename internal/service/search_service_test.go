package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-resource-bot/internal/dto"
	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

func TestSearchServiceStructuredFilters(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)

	result, err := svc.Search(context.Background(), dto.SearchRequest{SubjectCode: "BCS515C", Module: "4"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "43", result.Resources[0].ID)
	assert.Equal(t, models.Criteria{SubjectCode: "BCS515C", Semester: "all", Module: "4"}, result.Criteria)
}

func TestSearchServiceQueryWithOverride(t *testing.T) {
	extractor := &stubExtractor{criteria: models.Criteria{Subject: "ARTIFICIAL INTELLIGENCE", Semester: "all", Module: "3"}}
	svc := NewSearchService(sampleCatalog(t), extractor, nil, nil, nil)

	result, err := svc.Search(context.Background(), dto.SearchRequest{Query: "AI notes module third", Module: "4"})

	require.NoError(t, err)
	assert.Equal(t, "ai notes module 3", extractor.lastText)
	assert.Equal(t, "4", result.Criteria.Module)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "43", result.Resources[0].ID)
}

func TestSearchServiceRejectsNonSearch(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), &stubExtractor{criteria: models.DefaultCriteria()}, nil, nil, nil)

	_, err := svc.Search(context.Background(), dto.SearchRequest{Query: "hello", Semester: "5"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSearchServiceValidatesInput(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)

	_, err := svc.Search(context.Background(), dto.SearchRequest{SubjectCode: "BCS-515"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSearchServiceExportCSV(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), dto.SearchRequest{Subject: "artificial intelligence"}, "CSV")

	require.NoError(t, err)
	assert.Equal(t, "resources-20240301-083000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Faculty,Subject,Code,Semester,Module,Link", lines[0])
	assert.Equal(t, "42,AIML,ARTIFICIAL INTELLIGENCE,BCS515C,5,3,https://example.com/ai-m3", lines[1])
}

func TestSearchServiceExportPDF(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.SearchRequest{SubjectCode: "BAD402"}, "pdf")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestSearchServiceExportRejectsUnknownFormat(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)

	_, err := svc.Export(context.Background(), dto.SearchRequest{SubjectCode: "BAD402"}, "xlsx")

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnsupportedFormat))
}

func TestSearchServiceSubjects(t *testing.T) {
	svc := NewSearchService(sampleCatalog(t), nil, nil, nil, nil)
	assert.Equal(t, []string{"ARTIFICIAL INTELLIGENCE", "ANALYSIS AND DESIGN OF ALGORITHMS"}, svc.Subjects().Subjects)
}
