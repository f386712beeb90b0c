package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

// TextCacheRepository keeps extracted document text in Redis as plain strings.
type TextCacheRepository struct {
	client *redis.Client
	prefix string
}

// NewTextCacheRepository constructs a text cache. A nil client behaves as an
// always-missing cache.
func NewTextCacheRepository(client *redis.Client, prefix string) *TextCacheRepository {
	return &TextCacheRepository{client: client, prefix: prefix}
}

// Get returns the cached text or ErrCacheMiss.
func (r *TextCacheRepository) Get(ctx context.Context, key string) (string, error) {
	if r.client == nil {
		return "", appErrors.ErrCacheMiss
	}

	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", appErrors.ErrCacheMiss
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores the text with the given TTL.
func (r *TextCacheRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
