package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

const testSessionPrefix = "resource-bot:session:"

func TestSessionRedisRepositorySaveAndGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRedisRepository(client, testSessionPrefix)
	ctx := context.Background()

	session := &models.Session{
		UserID:      "whatsapp:+15550001",
		Mode:        models.SessionModeAwaitingChoice,
		DocumentIDs: []string{"42", "43"},
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(session)
	require.NoError(t, err)

	mock.ExpectSet(testSessionPrefix+session.UserID, payload, 30*time.Minute).SetVal("OK")
	require.NoError(t, repo.Save(ctx, session, 30*time.Minute))

	mock.ExpectGet(testSessionPrefix + session.UserID).SetVal(string(payload))
	stored, err := repo.Get(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, session.Mode, stored.Mode)
	assert.Equal(t, session.DocumentIDs, stored.DocumentIDs)
	assert.True(t, session.CreatedAt.Equal(stored.CreatedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRedisRepositoryMissingKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRedisRepository(client, testSessionPrefix)

	mock.ExpectGet(testSessionPrefix + "u1").RedisNil()
	_, err := repo.Get(context.Background(), "u1")

	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRedisRepositoryErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewSessionRedisRepository(client, testSessionPrefix)
	ctx := context.Background()

	mock.ExpectGet(testSessionPrefix + "u1").SetErr(errors.New("connection refused"))
	_, err := repo.Get(ctx, "u1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrSessionNotFound))

	mock.ExpectGet(testSessionPrefix + "u2").SetVal("{not json")
	_, err = repo.Get(ctx, "u2")
	require.Error(t, err)

	mock.ExpectDel(testSessionPrefix + "u1").SetVal(1)
	require.NoError(t, repo.Delete(ctx, "u1"))

	require.NoError(t, mock.ExpectationsWereMet())
}
