package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

// SessionRepository persists sessions keyed by user identity. Get returns
// errors.ErrSessionNotFound when the user has no live session.
type SessionRepository interface {
	Get(ctx context.Context, userID string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// SessionService wraps the session repository with TTL handling and
// per-user locking.
type SessionService struct {
	repo  SessionRepository
	ttl   time.Duration
	locks *keyedMutex
	now   func() time.Time
}

// NewSessionService constructs the service. A zero ttl keeps sessions until
// the user resolves them.
func NewSessionService(repo SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{repo: repo, ttl: ttl, locks: newKeyedMutex(), now: time.Now}
}

// Lock serializes work for one user identity. The returned func releases it.
func (s *SessionService) Lock(userID string) func() {
	return s.locks.Lock(userID)
}

// Get returns the user's session, or nil when none exists.
func (s *SessionService) Get(ctx context.Context, userID string) (*models.Session, error) {
	session, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// Start creates a fresh awaiting-choice session for the given documents.
func (s *SessionService) Start(ctx context.Context, userID string, documentIDs []string) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		UserID:      userID,
		Mode:        models.SessionModeAwaitingChoice,
		DocumentIDs: append([]string(nil), documentIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Save(ctx, session, s.ttl); err != nil {
		return nil, err
	}
	return session, nil
}

// SetMode moves an existing session to mode, keeping its documents.
func (s *SessionService) SetMode(ctx context.Context, session *models.Session, mode models.SessionMode) error {
	session.Mode = mode
	session.UpdatedAt = s.now().UTC()
	return s.repo.Save(ctx, session, s.ttl)
}

// Touch refreshes the session expiry after activity.
func (s *SessionService) Touch(ctx context.Context, session *models.Session) error {
	if s.ttl <= 0 {
		return nil
	}
	session.UpdatedAt = s.now().UTC()
	return s.repo.Save(ctx, session, s.ttl)
}

// End deletes the user's session.
func (s *SessionService) End(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// keyedMutex hands out one mutex per key and frees it when nobody holds or
// waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
