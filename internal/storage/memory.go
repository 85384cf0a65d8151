package storage

import (
	"sync"

	"github.com/johanforsgren/repodeck/internal/domain"
)

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mu      sync.RWMutex
	session domain.Session
}

func NewMemoryStore(initial domain.Session) *MemoryStore {
	return &MemoryStore{session: initial}
}

func (s *MemoryStore) Load() (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

func (s *MemoryStore) Save(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	return nil
}
