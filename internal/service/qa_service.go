package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/pkg/llm"
)

const qaSystemPrompt = "You are an expert tutor answering questions based only on the provided study notes. " +
	"Use the given text strictly to answer the question briefly and clearly, suitable for exams."

// QAServiceConfig tunes the grounded answering call.
type QAServiceConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Apology   string
}

// QAService answers questions grounded in document text.
type QAService struct {
	client  llm.Client
	cfg     QAServiceConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewQAService constructs the service.
func NewQAService(client llm.Client, cfg QAServiceConfig, metrics *MetricsService, logger *zap.Logger) *QAService {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QAService{client: client, cfg: cfg, metrics: metrics, logger: logger}
}

// Answer never fails; delegate errors produce the configured apology.
func (s *QAService) Answer(ctx context.Context, notes, question string) string {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.client.Complete(ctx, llm.Request{
		Model:     s.cfg.Model,
		System:    qaSystemPrompt,
		User:      "Notes:\n" + notes + "\n\nQuestion: " + question,
		MaxTokens: s.cfg.MaxTokens,
	})
	s.metrics.ObserveDelegate("qa", err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("document QA failed", zap.Error(err))
		return s.cfg.Apology
	}
	return answer
}
