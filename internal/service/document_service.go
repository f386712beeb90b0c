package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type documentLocator interface {
	Path(documentID string) (string, error)
}

type textExtractor interface {
	ExtractFile(ctx context.Context, path string) (string, error)
}

// DocumentService resolves document ids to their plain text, with an
// optional cache in front of PDF extraction.
type DocumentService struct {
	store       documentLocator
	extractor   textExtractor
	cache       *CacheService
	parallelism int
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewDocumentService constructs the service. cache may be nil.
func NewDocumentService(store documentLocator, extractor textExtractor, cache *CacheService, parallelism int, metrics *MetricsService, logger *zap.Logger) *DocumentService {
	if parallelism <= 0 {
		parallelism = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		store:       store,
		extractor:   extractor,
		cache:       cache,
		parallelism: parallelism,
		metrics:     metrics,
		logger:      logger,
	}
}

// Text returns the plain text of one document. A panicking extractor is
// reported as an error for that document.
func (s *DocumentService) Text(ctx context.Context, documentID string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract document %s: %v", documentID, r)
		}
	}()

	cacheKey := "doc:" + documentID
	if text, ok := s.cache.Get(ctx, cacheKey); ok {
		return text, nil
	}

	path, err := s.store.Path(documentID)
	if err != nil {
		return "", err
	}
	start := time.Now()
	text, err = s.extractor.ExtractFile(ctx, path)
	s.metrics.ObserveDelegate("document_text", err == nil, time.Since(start))
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, cacheKey, text)
	return text, nil
}

// CombinedText concatenates the text of every document in order, each
// followed by a blank line. A document that cannot be read is logged and
// contributes nothing; the rest of the batch is unaffected.
func (s *DocumentService) CombinedText(ctx context.Context, documentIDs []string) string {
	texts := make([]string, len(documentIDs))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, id := range documentIDs {
		i, id := i, id
		g.Go(func() error {
			text, err := s.Text(ctx, id)
			if err != nil {
				s.logger.Warn("document text extraction failed", zap.String("document_id", id), zap.Error(err))
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()

	var b strings.Builder
	for _, text := range texts {
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String()
}
