package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

type catalogLoader interface {
	LoadResources(ctx context.Context) ([]models.Resource, error)
}

// CatalogService holds the immutable resource table and applies search
// criteria to it. It needs no locking after construction.
type CatalogService struct {
	resources []models.Resource
	subjects  []string
}

// LoadCatalog reads the table once through loader. Any failure is fatal to startup.
func LoadCatalog(ctx context.Context, loader catalogLoader, logger *zap.Logger) (*CatalogService, error) {
	resources, err := loader.LoadResources(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCatalogLoad.Code, appErrors.ErrCatalogLoad.Status, appErrors.ErrCatalogLoad.Message)
	}
	catalog, err := NewCatalogService(resources)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("catalog loaded", zap.Int("resources", len(catalog.resources)), zap.Strings("subjects", catalog.subjects))
	}
	return catalog, nil
}

// NewCatalogService validates ids and derives the canonical subject list in
// first-seen order.
func NewCatalogService(resources []models.Resource) (*CatalogService, error) {
	seen := make(map[string]struct{}, len(resources))
	subjectSeen := make(map[string]struct{})
	subjects := make([]string, 0)
	rows := make([]models.Resource, len(resources))
	copy(rows, resources)

	for i, r := range rows {
		if r.ID == "" {
			return nil, appErrors.Clone(appErrors.ErrCatalogLoad, fmt.Sprintf("resource at row %d has no id", i+1))
		}
		if _, dup := seen[r.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrDuplicateResource, fmt.Sprintf("duplicate resource id %q", r.ID))
		}
		seen[r.ID] = struct{}{}
		if r.Subject == "" {
			continue
		}
		if _, ok := subjectSeen[r.Subject]; !ok {
			subjectSeen[r.Subject] = struct{}{}
			subjects = append(subjects, r.Subject)
		}
	}
	return &CatalogService{resources: rows, subjects: subjects}, nil
}

// Subjects returns the canonical subject names.
func (s *CatalogService) Subjects() []string {
	return append([]string(nil), s.subjects...)
}

// Resources returns a copy of the full catalog in load order.
func (s *CatalogService) Resources() []models.Resource {
	return append([]models.Resource(nil), s.resources...)
}

// Len is the number of resources in the catalog.
func (s *CatalogService) Len() int {
	return len(s.resources)
}

// Filter narrows the catalog step by step: faculty (contains), subject,
// subject code, semester, module. Each step filters the previous step's
// output and catalog order is preserved. Unconstrained criteria return
// everything; callers decide whether that is a valid search.
func (s *CatalogService) Filter(criteria models.Criteria) []models.Resource {
	result := s.Resources()

	if criteria.Faculty != "" {
		needle := strings.ToLower(criteria.Faculty)
		result = narrow(result, func(r models.Resource) bool {
			return strings.Contains(strings.ToLower(r.Faculty), needle)
		})
	}
	if criteria.Subject != "" {
		result = narrow(result, func(r models.Resource) bool {
			return strings.EqualFold(r.Subject, criteria.Subject)
		})
	}
	if criteria.SubjectCode != "" {
		result = narrow(result, func(r models.Resource) bool {
			return strings.EqualFold(r.SubjectCode, criteria.SubjectCode)
		})
	}
	if !models.Unconstrained(criteria.Semester) {
		result = narrow(result, func(r models.Resource) bool {
			return r.Semester == criteria.Semester
		})
	}
	if !models.Unconstrained(criteria.Module) {
		result = narrow(result, func(r models.Resource) bool {
			return r.Module == criteria.Module
		})
	}
	return result
}

func narrow(rows []models.Resource, keep func(models.Resource) bool) []models.Resource {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
