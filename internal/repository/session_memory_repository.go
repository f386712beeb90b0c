package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/study-resource-bot/internal/models"
	appErrors "github.com/noah-isme/study-resource-bot/pkg/errors"
)

// SessionMemoryRepository keeps sessions in process memory.
type SessionMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	session   models.Session
	expiresAt time.Time
}

// NewSessionMemoryRepository constructs an empty in-memory store.
func NewSessionMemoryRepository() *SessionMemoryRepository {
	return &SessionMemoryRepository{sessions: make(map[string]memorySession), now: time.Now}
}

// Get returns a copy of the stored session or ErrSessionNotFound.
func (r *SessionMemoryRepository) Get(ctx context.Context, userID string) (*models.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		if current, still := r.sessions[userID]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(r.sessions, userID)
		}
		r.mu.Unlock()
		return nil, appErrors.ErrSessionNotFound
	}
	session := entry.session
	session.DocumentIDs = append([]string(nil), entry.session.DocumentIDs...)
	return &session, nil
}

// Save stores a copy of the session. A zero ttl keeps it until deleted.
func (r *SessionMemoryRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	entry := memorySession{session: *session}
	entry.session.DocumentIDs = append([]string(nil), session.DocumentIDs...)
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}
	r.mu.Lock()
	r.sessions[session.UserID] = entry
	r.mu.Unlock()
	return nil
}

// Delete removes the session; deleting a missing session is not an error.
func (r *SessionMemoryRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (r *SessionMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
