package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/repository"
	"github.com/noah-isme/study-resource-bot/internal/service"
	"github.com/noah-isme/study-resource-bot/pkg/cache"
	"github.com/noah-isme/study-resource-bot/pkg/config"
	"github.com/noah-isme/study-resource-bot/pkg/database"
	"github.com/noah-isme/study-resource-bot/pkg/llm"
	"github.com/noah-isme/study-resource-bot/pkg/logger"
	"github.com/noah-isme/study-resource-bot/pkg/messages"
	"github.com/noah-isme/study-resource-bot/pkg/messaging"
	"github.com/noah-isme/study-resource-bot/pkg/pdftext"
	"github.com/noah-isme/study-resource-bot/pkg/storage"
)

// runtime bundles what every command needs.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	catalog *service.CatalogService

	llm          llm.Client
	extractModel string
	qaModel      string

	closers []func()
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logr}
	if cfg.Metrics.Enabled {
		rt.metrics = service.NewMetricsService()
	}

	catalog, err := rt.loadCatalog(ctx)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.catalog = catalog
	return rt, nil
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	_ = rt.logger.Sync()
}

func (rt *runtime) loadCatalog(ctx context.Context) (*service.CatalogService, error) {
	switch rt.cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		db, err := database.NewPostgres(ctx, rt.cfg.Database)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = db.Close() })
		repo, err := repository.NewCatalogRepository(db, rt.cfg.Catalog.Table)
		if err != nil {
			return nil, err
		}
		return service.LoadCatalog(ctx, repo, rt.logger)
	default:
		return service.LoadCatalog(ctx, repository.NewCatalogCSVRepository(rt.cfg.Catalog.Path), rt.logger)
	}
}

// redisClient connects lazily so commands that never touch Redis do not need it.
func (rt *runtime) redisClient(ctx context.Context) (*redis.Client, error) {
	client, err := cache.NewRedis(ctx, rt.cfg.Redis)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, func() { _ = client.Close() })
	return client, nil
}

// llmClient returns the configured provider plus the models used for
// extraction and for answering. The client is built once per runtime.
func (rt *runtime) llmClient(ctx context.Context) (llm.Client, string, string, error) {
	if rt.llm != nil {
		return rt.llm, rt.extractModel, rt.qaModel, nil
	}
	switch rt.cfg.LLM.Provider {
	case config.LLMProviderGemini:
		client, err := llm.NewGeminiClient(ctx, rt.cfg.LLM.Gemini.APIKey)
		if err != nil {
			return nil, "", "", err
		}
		rt.llm, rt.extractModel, rt.qaModel = client, rt.cfg.LLM.Gemini.ExtractModel, rt.cfg.LLM.Gemini.QAModel
	default:
		client, err := llm.NewOpenRouterClient(llm.OpenRouterConfig{
			URL:        rt.cfg.LLM.OpenRouter.URL,
			APIKey:     rt.cfg.LLM.OpenRouter.APIKey,
			Timeout:    rt.cfg.LLM.Timeout,
			MaxRetries: rt.cfg.LLM.MaxRetries,
		})
		if err != nil {
			return nil, "", "", err
		}
		rt.llm, rt.extractModel, rt.qaModel = client, rt.cfg.LLM.OpenRouter.ExtractModel, rt.cfg.LLM.OpenRouter.QAModel
	}
	rt.logger.Info("llm provider ready", zap.String("provider", rt.cfg.LLM.Provider), zap.String("extract_model", rt.extractModel), zap.String("qa_model", rt.qaModel))
	return rt.llm, rt.extractModel, rt.qaModel, nil
}

func (rt *runtime) extractor(client llm.Client, model string) *service.CriteriaExtractor {
	return service.NewCriteriaExtractor(client, service.CriteriaExtractorConfig{
		Model:     model,
		MaxTokens: rt.cfg.LLM.ExtractMaxTokens,
		Timeout:   rt.cfg.LLM.Timeout,
	}, rt.metrics, rt.logger)
}

// dialogue wires the full conversation flow around messenger.
func (rt *runtime) dialogue(ctx context.Context, messenger messaging.Messenger) (*service.DialogueService, error) {
	client, extractModel, qaModel, err := rt.llmClient(ctx)
	if err != nil {
		return nil, err
	}

	msgs, err := messages.Load(rt.cfg.Messages.File)
	if err != nil {
		return nil, err
	}

	var sessionRepo service.SessionRepository
	var textCache *repository.TextCacheRepository
	needRedis := rt.cfg.Session.Backend == config.SessionBackendRedis || rt.cfg.Documents.CacheEnabled
	if needRedis {
		rdb, err := rt.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		if rt.cfg.Session.Backend == config.SessionBackendRedis {
			sessionRepo = repository.NewSessionRedisRepository(rdb, rt.cfg.Session.KeyPrefix)
		}
		if rt.cfg.Documents.CacheEnabled {
			textCache = repository.NewTextCacheRepository(rdb, "resource-bot:doctext:")
		}
	}
	if sessionRepo == nil {
		sessionRepo = repository.NewSessionMemoryRepository()
	}

	var cacheSvc *service.CacheService
	if textCache != nil {
		cacheSvc = service.NewCacheService(textCache, rt.metrics, rt.cfg.Documents.CacheTTL, rt.logger, true)
	}

	store := storage.NewDocumentStore(rt.cfg.Documents.Dir)
	missing := 0
	for _, r := range rt.catalog.Resources() {
		if !store.Exists(r.ID) {
			missing++
		}
	}
	if missing > 0 {
		rt.logger.Warn("catalog documents missing on disk", zap.String("dir", store.BaseDir()), zap.Int("missing", missing), zap.Int("total", rt.catalog.Len()))
	}

	documents := service.NewDocumentService(
		store,
		pdftext.NewExtractor(0),
		cacheSvc,
		rt.cfg.Documents.ExtractParallelism,
		rt.metrics,
		rt.logger,
	)

	qa := service.NewQAService(client, service.QAServiceConfig{
		Model:     qaModel,
		MaxTokens: rt.cfg.LLM.QAMaxTokens,
		Timeout:   rt.cfg.LLM.Timeout,
		Apology:   msgs.QAApology,
	}, rt.metrics, rt.logger)

	return service.NewDialogueService(service.DialogueParams{
		Catalog:   rt.catalog,
		Extractor: rt.extractor(client, extractModel),
		Documents: documents,
		QA:        qa,
		Sessions:  service.NewSessionService(sessionRepo, rt.cfg.Session.TTL),
		Messenger: messenger,
		Messages:  msgs,
		Metrics:   rt.metrics,
		Logger:    rt.logger,
	}), nil
}
