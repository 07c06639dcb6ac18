package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// Store keeps sessions in a map. Every read and write copies the session,
// so callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: map[string]*domain.Session{}}
}

func (s *Store) Save(_ context.Context, sessionID string, sess *domain.Session) error {
	copied := sess.Snapshot()
	s.mu.Lock()
	s.sessions[sessionID] = copied
	s.mu.Unlock()
	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}

// Delete is a no-op for unknown IDs.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the stored IDs sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.sessions)), nil
}
