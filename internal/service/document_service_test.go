package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

type stubLocator struct{}

func (stubLocator) Path(id string) (string, error) {
	if id == "../etc" {
		return "", errors.New("invalid document id")
	}
	return "/docs/" + id + ".pdf", nil
}

type stubTextExtractor struct {
	mu    sync.Mutex
	texts map[string]string
	calls map[string]int
}

func (s *stubTextExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[path]++
	text, ok := s.texts[path]
	if !ok {
		return "", fmt.Errorf("open %s: no such file", path)
	}
	return text, nil
}

type memoryTextCache struct {
	mu     sync.Mutex
	values map[string]string
	ttl    time.Duration
}

func (m *memoryTextCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", appErrors.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryTextCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	m.ttl = ttl
	return nil
}

func TestDocumentServiceCombinedTextKeepsOrderAndSkipsFailures(t *testing.T) {
	extractor := &stubTextExtractor{texts: map[string]string{
		"/docs/1.pdf": "one",
		"/docs/3.pdf": "three",
	}}
	svc := NewDocumentService(stubLocator{}, extractor, nil, 2, nil, nil)

	text := svc.CombinedText(context.Background(), []string{"3", "2", "1", "../etc"})

	assert.Equal(t, "three\n\n\n\none\n\n\n\n", text)
}

type panickingExtractor struct {
	stubTextExtractor
	broken string
}

func (p *panickingExtractor) ExtractFile(ctx context.Context, path string) (string, error) {
	if path == p.broken {
		panic(`unexpected keyword ">>" parsing object`)
	}
	return p.stubTextExtractor.ExtractFile(ctx, path)
}

func TestDocumentServiceCombinedTextSurvivesPanickingDocument(t *testing.T) {
	extractor := &panickingExtractor{
		stubTextExtractor: stubTextExtractor{texts: map[string]string{"/docs/42.pdf": "module three"}},
		broken:            "/docs/7.pdf",
	}
	svc := NewDocumentService(stubLocator{}, extractor, nil, 4, nil, nil)

	text := svc.CombinedText(context.Background(), []string{"7", "42"})
	assert.Equal(t, "\n\nmodule three\n\n", text)

	_, err := svc.Text(context.Background(), "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing object")
}

func TestDocumentServiceCombinedTextEmpty(t *testing.T) {
	svc := NewDocumentService(stubLocator{}, &stubTextExtractor{}, nil, 0, nil, nil)
	assert.Equal(t, "", svc.CombinedText(context.Background(), nil))
}

func TestDocumentServiceUsesCache(t *testing.T) {
	extractor := &stubTextExtractor{texts: map[string]string{"/docs/42.pdf": "search notes"}}
	store := &memoryTextCache{}
	cache := NewCacheService(store, nil, time.Hour, nil, true)
	svc := NewDocumentService(stubLocator{}, extractor, cache, 1, nil, nil)
	ctx := context.Background()

	first, err := svc.Text(ctx, "42")
	require.NoError(t, err)
	second, err := svc.Text(ctx, "42")
	require.NoError(t, err)

	assert.Equal(t, "search notes", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, extractor.calls["/docs/42.pdf"])
	assert.Equal(t, "search notes", store.values["doc:42"])
	assert.Equal(t, time.Hour, store.ttl)
}

func TestCacheServiceDisabled(t *testing.T) {
	store := &memoryTextCache{values: map[string]string{"k": "v"}}
	cache := NewCacheService(store, nil, 0, nil, false)

	_, ok := cache.Get(context.Background(), "k")
	assert.False(t, ok)
	cache.Set(context.Background(), "k2", "v2")
	assert.NotContains(t, store.values, "k2")

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	_, ok = nilCache.Get(context.Background(), "k")
	assert.False(t, ok)
}
