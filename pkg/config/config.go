package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CatalogSourceCSV      = "csv"
	CatalogSourcePostgres = "postgres"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	LLMProviderOpenRouter = "openrouter"
	LLMProviderGemini     = "gemini"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log       LogConfig
	Catalog   CatalogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Documents DocumentsConfig
	LLM       LLMConfig
	Twilio    TwilioConfig
	Delivery  DeliveryConfig
	Messages  MessagesConfig
	Metrics   MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig selects where the resource table is loaded from at startup.
type CatalogConfig struct {
	Source string
	Path   string
	Table  string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the per-user conversation store.
type SessionConfig struct {
	Backend   string
	TTL       time.Duration
	KeyPrefix string
}

// DocumentsConfig locates stored notes and tunes text extraction.
type DocumentsConfig struct {
	Dir                string
	CacheEnabled       bool
	CacheTTL           time.Duration
	ExtractParallelism int
}

// LLMConfig configures both text-understanding delegates.
type LLMConfig struct {
	Provider         string
	Timeout          time.Duration
	MaxRetries       int
	ExtractMaxTokens int
	QAMaxTokens      int
	OpenRouter       OpenRouterConfig
	Gemini           GeminiConfig
}

type OpenRouterConfig struct {
	APIKey       string
	URL          string
	ExtractModel string
	QAModel      string
}

type GeminiConfig struct {
	APIKey       string
	ExtractModel string
	QAModel      string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// DeliveryConfig toggles asynchronous outbound delivery.
type DeliveryConfig struct {
	Async      bool
	Workers    int
	Buffer     int
	Retries    int
	RetryDelay time.Duration
}

type MessagesConfig struct {
	File string
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		Source: strings.ToLower(v.GetString("CATALOG_SOURCE")),
		Path:   v.GetString("CATALOG_PATH"),
		Table:  v.GetString("DB_CATALOG_TABLE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Backend:   strings.ToLower(v.GetString("SESSION_BACKEND")),
		TTL:       parseDuration(v.GetString("SESSION_TTL"), 0),
		KeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}

	parallelism := v.GetInt("DOCUMENT_EXTRACT_CONCURRENCY")
	if parallelism <= 0 {
		parallelism = 1
	}
	cfg.Documents = DocumentsConfig{
		Dir:                v.GetString("DOCUMENTS_DIR"),
		CacheEnabled:       v.GetBool("DOCUMENT_TEXT_CACHE_ENABLED"),
		CacheTTL:           parseDuration(v.GetString("DOCUMENT_TEXT_CACHE_TTL"), 24*time.Hour),
		ExtractParallelism: parallelism,
	}

	cfg.LLM = LLMConfig{
		Provider:         strings.ToLower(v.GetString("LLM_PROVIDER")),
		Timeout:          parseDuration(v.GetString("LLM_TIMEOUT"), 30*time.Second),
		MaxRetries:       v.GetInt("LLM_MAX_RETRIES"),
		ExtractMaxTokens: v.GetInt("LLM_EXTRACT_MAX_TOKENS"),
		QAMaxTokens:      v.GetInt("LLM_QA_MAX_TOKENS"),
		OpenRouter: OpenRouterConfig{
			APIKey:       v.GetString("OPENROUTER_API_KEY"),
			URL:          v.GetString("OPENROUTER_URL"),
			ExtractModel: v.GetString("OPENROUTER_EXTRACT_MODEL"),
			QAModel:      v.GetString("OPENROUTER_QA_MODEL"),
		},
		Gemini: GeminiConfig{
			APIKey:       v.GetString("GEMINI_API_KEY"),
			ExtractModel: v.GetString("GEMINI_EXTRACT_MODEL"),
			QAModel:      v.GetString("GEMINI_QA_MODEL"),
		},
	}

	cfg.Twilio = TwilioConfig{
		AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
		AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
		FromNumber: v.GetString("TWILIO_FROM_NUMBER"),
	}

	cfg.Delivery = DeliveryConfig{
		Async:      v.GetBool("DELIVERY_ASYNC"),
		Workers:    v.GetInt("DELIVERY_WORKERS"),
		Buffer:     v.GetInt("DELIVERY_BUFFER"),
		Retries:    v.GetInt("DELIVERY_RETRIES"),
		RetryDelay: parseDuration(v.GetString("DELIVERY_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Messages = MessagesConfig{File: v.GetString("MESSAGES_FILE")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

// Validate rejects unknown backend selectors.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceCSV:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=csv")
		}
	case CatalogSourcePostgres:
		if c.Catalog.Table == "" {
			return fmt.Errorf("DB_CATALOG_TABLE is required when CATALOG_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("unsupported CATALOG_SOURCE %q", c.Catalog.Source)
	}

	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}

	switch c.LLM.Provider {
	case LLMProviderOpenRouter, LLMProviderGemini:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_SOURCE", CatalogSourceCSV)
	v.SetDefault("CATALOG_PATH", "rag-link - AIML.csv")
	v.SetDefault("DB_CATALOG_TABLE", "resources")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_resources")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_BACKEND", SessionBackendMemory)
	v.SetDefault("SESSION_TTL", "0s")
	v.SetDefault("SESSION_KEY_PREFIX", "resource-bot:session:")

	v.SetDefault("DOCUMENTS_DIR", "./downloads")
	v.SetDefault("DOCUMENT_TEXT_CACHE_ENABLED", false)
	v.SetDefault("DOCUMENT_TEXT_CACHE_TTL", "24h")
	v.SetDefault("DOCUMENT_EXTRACT_CONCURRENCY", 4)

	v.SetDefault("LLM_PROVIDER", LLMProviderOpenRouter)
	v.SetDefault("LLM_TIMEOUT", "30s")
	v.SetDefault("LLM_MAX_RETRIES", 3)
	v.SetDefault("LLM_EXTRACT_MAX_TOKENS", 200)
	v.SetDefault("LLM_QA_MAX_TOKENS", 400)
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_URL", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("OPENROUTER_EXTRACT_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENROUTER_QA_MODEL", "anthropic/claude-3-haiku")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_EXTRACT_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_QA_MODEL", "gemini-2.0-flash")

	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM_NUMBER", "whatsapp:+14155238886")

	v.SetDefault("DELIVERY_ASYNC", false)
	v.SetDefault("DELIVERY_WORKERS", 2)
	v.SetDefault("DELIVERY_BUFFER", 256)
	v.SetDefault("DELIVERY_RETRIES", 3)
	v.SetDefault("DELIVERY_RETRY_DELAY", "2s")

	v.SetDefault("MESSAGES_FILE", "")
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
