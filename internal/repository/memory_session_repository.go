package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/school-records-api/internal/models"
)

// MemorySessionRepository keeps sessions in process memory. Sessions do not
// survive a restart and are not shared between instances.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemorySessionRepository constructs an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]models.Session)}
}

// Create stores a copy of the session.
func (r *MemorySessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.TokenHash]; exists {
		return fmt.Errorf("create session: %w", ErrDuplicate)
	}
	r.sessions[session.TokenHash] = *session
	return nil
}

// FindByTokenHash returns a copy of the stored session or ErrSessionNotFound.
func (r *MemorySessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session.
func (r *MemorySessionRepository) Delete(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenHash)
	return nil
}

// DeleteExpired purges sessions that expired at or before now.
func (r *MemorySessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for hash, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
