package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

type stubLoader struct {
	resources []models.Resource
	err       error
}

func (s stubLoader) LoadResources(ctx context.Context) ([]models.Resource, error) {
	return s.resources, s.err
}

func generatedCatalog(t *testing.T) *CatalogService {
	t.Helper()
	subjects := []string{"ARTIFICIAL INTELLIGENCE", "MACHINE LEARNING", "DATA STRUCTURES"}
	codes := []string{"BCS515C", "BAI602", "BCS304"}
	faculties := []string{"AIML", "CSE"}
	var rows []models.Resource
	id := 1
	for s := range subjects {
		for sem := 3; sem <= 6; sem++ {
			for mod := 1; mod <= 5; mod++ {
				rows = append(rows, models.Resource{
					ID:          fmt.Sprint(id),
					Faculty:     faculties[id%2],
					Subject:     subjects[s],
					SubjectCode: codes[s],
					Semester:    fmt.Sprint(sem),
					Module:      fmt.Sprint(mod),
					Link:        fmt.Sprintf("https://example.com/%d", id),
				})
				id++
			}
		}
	}
	catalog, err := NewCatalogService(rows)
	require.NoError(t, err)
	return catalog
}

func bruteForceMatch(r models.Resource, c models.Criteria) bool {
	if c.Faculty != "" && !strings.Contains(strings.ToLower(r.Faculty), strings.ToLower(c.Faculty)) {
		return false
	}
	if c.Subject != "" && !strings.EqualFold(r.Subject, c.Subject) {
		return false
	}
	if c.SubjectCode != "" && !strings.EqualFold(r.SubjectCode, c.SubjectCode) {
		return false
	}
	if !models.Unconstrained(c.Semester) && r.Semester != c.Semester {
		return false
	}
	if !models.Unconstrained(c.Module) && r.Module != c.Module {
		return false
	}
	return true
}

func TestCatalogFilterUnconstrainedReturnsEverything(t *testing.T) {
	catalog := generatedCatalog(t)

	assert.Equal(t, catalog.Resources(), catalog.Filter(models.DefaultCriteria()))
	assert.Equal(t, catalog.Resources(), catalog.Filter(models.Criteria{Semester: "ALL", Module: ""}))
}

func TestCatalogFilterMatchesBruteForce(t *testing.T) {
	catalog := generatedCatalog(t)
	cases := []models.Criteria{
		{Subject: "machine learning", Semester: "all", Module: "all"},
		{SubjectCode: "bcs304", Semester: "4", Module: "all"},
		{Faculty: "aim", Semester: "all", Module: "2"},
		{Faculty: "CSE", Subject: "ARTIFICIAL INTELLIGENCE", SubjectCode: "BCS515C", Semester: "5", Module: "5"},
		{Subject: "ARTIFICIAL INTELLIGENCE", SubjectCode: "BAI602", Semester: "all", Module: "all"},
		{Subject: "ROBOTICS", Semester: "all", Module: "all"},
	}

	for _, c := range cases {
		got := catalog.Filter(c)
		var want []models.Resource
		for _, r := range catalog.Resources() {
			if bruteForceMatch(r, c) {
				want = append(want, r)
			}
		}
		if len(want) == 0 {
			assert.Empty(t, got, "criteria %+v", c)
			continue
		}
		assert.Equal(t, want, got, "criteria %+v", c)
	}
}

func TestCatalogFilterIsIdempotentAndLeavesCatalogIntact(t *testing.T) {
	catalog := generatedCatalog(t)
	before := catalog.Resources()
	criteria := models.Criteria{Subject: "DATA STRUCTURES", Semester: "3", Module: "all"}

	first := catalog.Filter(criteria)
	second := catalog.Filter(criteria)

	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
	assert.Equal(t, before, catalog.Resources())
}

func TestCatalogSubjectsInFirstSeenOrder(t *testing.T) {
	catalog, err := NewCatalogService([]models.Resource{
		{ID: "1", Subject: "B"},
		{ID: "2", Subject: "A"},
		{ID: "3", Subject: "B"},
		{ID: "4", Subject: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, catalog.Subjects())
	assert.Equal(t, 4, catalog.Len())
}

func TestCatalogRejectsDuplicateAndBlankIDs(t *testing.T) {
	_, err := NewCatalogService([]models.Resource{{ID: "1"}, {ID: "1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateResource))

	_, err = NewCatalogService([]models.Resource{{ID: ""}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCatalogLoad))
}

func TestLoadCatalogWrapsLoaderError(t *testing.T) {
	_, err := LoadCatalog(context.Background(), stubLoader{err: errors.New("no such file")}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCatalogLoad))

	catalog, err := LoadCatalog(context.Background(), stubLoader{resources: []models.Resource{{ID: "1", Subject: "AI"}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI"}, catalog.Subjects())
}
