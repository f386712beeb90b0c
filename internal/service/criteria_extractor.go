package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/models"
	"github.com/noah-isme/study-resource-bot/pkg/llm"
)

// CriteriaExtractorConfig tunes the extraction call.
type CriteriaExtractorConfig struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// CriteriaExtractor turns a normalized utterance into search criteria using
// a JSON-mode chat completion.
type CriteriaExtractor struct {
	client  llm.Client
	cfg     CriteriaExtractorConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCriteriaExtractor constructs the extractor.
func NewCriteriaExtractor(client llm.Client, cfg CriteriaExtractorConfig, metrics *MetricsService, logger *zap.Logger) *CriteriaExtractor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriteriaExtractor{client: client, cfg: cfg, metrics: metrics, logger: logger}
}

// Extract never fails: on any delegate error it logs and returns
// models.DefaultCriteria(), which the dialogue treats as a greeting.
func (e *CriteriaExtractor) Extract(ctx context.Context, utterance string, subjects []string) models.Criteria {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := e.client.Complete(ctx, llm.Request{
		Model:     e.cfg.Model,
		System:    extractionPrompt(subjects),
		User:      utterance,
		MaxTokens: e.cfg.MaxTokens,
		JSON:      true,
	})
	if err != nil {
		e.metrics.ObserveDelegate("extract", false, time.Since(start))
		e.logger.Warn("criteria extraction failed", zap.Error(err))
		return models.DefaultCriteria()
	}

	criteria, err := parseCriteria(raw, subjects)
	e.metrics.ObserveDelegate("extract", err == nil, time.Since(start))
	if err != nil {
		e.logger.Warn("criteria extraction returned invalid JSON", zap.Error(err), zap.String("raw", raw))
		return models.DefaultCriteria()
	}
	return criteria
}

func extractionPrompt(subjects []string) string {
	quoted := make([]string, len(subjects))
	for i, s := range subjects {
		quoted[i] = "'" + s + "'"
	}
	return "You are an expert at information retrieval. Your job is to extract specific details from a user's request. " +
		"The available full subject names are: [" + strings.Join(quoted, ", ") + "]. " +
		"You must extract the following fields if they are mentioned: 'faculty', 'subject', 'subject_code', 'semester', 'module'.\n" +
		"- For the 'subject' key, you MUST map user abbreviations to one of the full subject names from the list. (e.g., 'ai' -> 'ARTIFICIAL INTELLIGENCE').\n" +
		"- For the 'subject_code' key, look for alphanumeric codes (e.g., 'BCS515C', 'BAD402').\n" +
		"Return a valid JSON object with five keys: 'faculty', 'subject', 'subject_code', 'semester', 'module'. " +
		"If a detail is not found, its value should be an empty string. For 'semester' and 'module', 'all' is also acceptable."
}

// parseCriteria decodes the delegate's JSON. Values may arrive as strings,
// numbers or null.
func parseCriteria(raw string, subjects []string) (models.Criteria, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &fields); err != nil {
		return models.Criteria{}, fmt.Errorf("decode criteria: %w", err)
	}

	criteria := models.Criteria{
		Faculty:     stringField(fields["faculty"]),
		Subject:     canonicalSubject(stringField(fields["subject"]), subjects),
		SubjectCode: stringField(fields["subject_code"]),
		Semester:    stringField(fields["semester"]),
		Module:      stringField(fields["module"]),
	}
	if criteria.Semester == "" {
		criteria.Semester = models.AllValue
	}
	if criteria.Module == "" {
		criteria.Module = models.AllValue
	}
	return criteria, nil
}

func stringField(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// canonicalSubject returns the catalog spelling of subject when it matches
// case-insensitively. Anything else is dropped so the criteria never name a
// subject outside the catalog.
func canonicalSubject(subject string, subjects []string) string {
	for _, s := range subjects {
		if strings.EqualFold(s, subject) {
			return s
		}
	}
	return ""
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
