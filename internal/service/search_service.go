package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/dto"
	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
	"github.com/noah-isme/study-resource-bot/pkg/export"
)

// Export formats accepted by SearchService.Export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered search result ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SearchService exposes the catalog to the REST API and CLI. A free-text
// query goes through the same normalizer and extractor as chat messages;
// explicit fields override whatever the extractor produced.
type SearchService struct {
	catalog   resourceFilter
	extractor criteriaExtractor
	validator *validator.Validate
	renderers map[string]tableRenderer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewSearchService wires the REST search flow. extractor may be nil when
// only structured filters are used.
func NewSearchService(catalog resourceFilter, extractor criteriaExtractor, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		catalog:   catalog,
		extractor: extractor,
		validator: validate,
		renderers: map[string]tableRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Subjects lists the canonical subject names.
func (s *SearchService) Subjects() dto.SubjectsResponse {
	return dto.SubjectsResponse{Subjects: s.catalog.Subjects()}
}

// Search resolves the request into criteria and filters the catalog.
// Requests that name neither a subject nor a subject code are rejected.
func (s *SearchService) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	criteria, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	results := s.catalog.Filter(criteria)
	s.metrics.ObserveSearch(len(results))
	s.logger.Debug("catalog searched", zap.Any("criteria", criteria), zap.Int("count", len(results)))

	return &dto.SearchResponse{
		Criteria:  criteria,
		Count:     len(results),
		Resources: results,
	}, nil
}

// Export runs Search and renders the matches as csv or pdf.
func (s *SearchService) Export(ctx context.Context, req dto.SearchRequest, format string) (*ExportFile, error) {
	renderer, ok := s.renderers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}

	result, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:      exportTitle(result.Criteria),
		Headers:    []string{"ID", "Faculty", "Subject", "Code", "Semester", "Module", "Link"},
		LinkColumn: 6,
		Rows:       make([][]string, 0, len(result.Resources)),
	}
	for _, r := range result.Resources {
		table.Rows = append(table.Rows, []string{r.ID, r.Faculty, r.Subject, r.SubjectCode, r.Semester, r.Module, r.Link})
	}

	data, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("resources-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *SearchService) resolve(ctx context.Context, req dto.SearchRequest) (models.Criteria, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Criteria{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search request")
	}

	criteria := models.DefaultCriteria()
	if query := strings.TrimSpace(req.Query); query != "" && s.extractor != nil {
		criteria = s.extractor.Extract(ctx, NormalizeQuery(query), s.catalog.Subjects())
	}

	override(&criteria.Faculty, req.Faculty)
	override(&criteria.Subject, req.Subject)
	override(&criteria.SubjectCode, req.SubjectCode)
	override(&criteria.Semester, req.Semester)
	override(&criteria.Module, req.Module)

	if !criteria.IsSearch() {
		return models.Criteria{}, appErrors.Clone(appErrors.ErrValidation, "faculty, subject or subject_code is required")
	}
	return criteria, nil
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func exportTitle(c models.Criteria) string {
	parts := make([]string, 0, 3)
	if c.Subject != "" {
		parts = append(parts, c.Subject)
	}
	if c.SubjectCode != "" {
		parts = append(parts, c.SubjectCode)
	}
	if !models.Unconstrained(c.Semester) {
		parts = append(parts, "semester "+c.Semester)
	}
	if len(parts) == 0 {
		return "Study resources"
	}
	return "Study resources: " + strings.Join(parts, " / ")
}
