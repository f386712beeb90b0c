package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

// SessionRedisRepository stores sessions as JSON values keyed by user identity.
type SessionRedisRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRedisRepository constructs a Redis-backed session store.
func NewSessionRedisRepository(client *redis.Client, prefix string) *SessionRedisRepository {
	return &SessionRedisRepository{client: client, prefix: prefix}
}

func (r *SessionRedisRepository) key(userID string) string {
	return r.prefix + userID
}

// Get loads the session or returns ErrSessionNotFound.
func (r *SessionRedisRepository) Get(ctx context.Context, userID string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session %s: %w", userID, err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", userID, err)
	}
	return &session, nil
}

// Save writes the session with the given expiry; zero means no expiry.
func (r *SessionRedisRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.UserID, err)
	}
	if err := r.client.Set(ctx, r.key(session.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.UserID, err)
	}
	return nil
}

// Delete removes the session key.
func (r *SessionRedisRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", userID, err)
	}
	return nil
}
