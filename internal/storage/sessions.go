package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// ErrSessionNotFound means the sender has no stored conversation yet.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps one conversation session per WhatsApp sender.
type SessionStore interface {
	// Get returns ErrSessionNotFound when the sender has never been seen.
	Get(ctx context.Context, userID string) (*models.Session, error)
	// Set creates or replaces the sender's session.
	Set(ctx context.Context, session *models.Session) error
}

// SessionSweeper is implemented by stores that can drop idle sessions on demand.
type SessionSweeper interface {
	Sweep(ctx context.Context, idleFor time.Duration) (int, error)
}

// SessionCounter reports how many sessions a store holds.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// MemorySessionStore is a process-local session store. Restarting the process resets every conversation.
type MemorySessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

// NewMemorySessionStore creates an empty store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.Session),
	}
}

var (
	_ SessionStore   = (*MemorySessionStore)(nil)
	_ SessionSweeper = (*MemorySessionStore)(nil)
	_ SessionCounter = (*MemorySessionStore)(nil)
)

func (m *MemorySessionStore) Get(ctx context.Context, userID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[userID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *MemorySessionStore) Set(ctx context.Context, session *models.Session) error {
	if session == nil || session.UserID == "" {
		return errors.New("session requires a user id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.UserID] = session.Clone()
	return nil
}

func (m *MemorySessionStore) Sweep(ctx context.Context, idleFor time.Duration) (int, error) {
	cutoff := time.Now().Add(-idleFor)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for phone, session := range m.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, phone)
			removed++
		}
	}
	return removed, nil
}

func (m *MemorySessionStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
