package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
)

const (
	configDir   = ".repodeck"
	sessionName = "session.json"
)

// DefaultSessionPath returns ~/.repodeck/session.json.
func DefaultSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir, sessionName), nil
}

type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore stores the session at path, or at DefaultSessionPath when path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		defaultPath, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	store := &FileStore{path: path}
	if err := store.ensureDir(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0o700)
}

func (s *FileStore) Load() (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logger.LogFileOpen(s.path)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Session{}, nil
		}
		logger.LogError("LOAD", s.path, err)
		return domain.Session{}, err
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.LogError("UNMARSHAL", s.path, err)
		return domain.Session{}, fmt.Errorf("failed to parse session file: %w", err)
	}

	return file.toSession(), nil
}

func (s *FileStore) Save(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fromSession(session), "", "  ")
	if err != nil {
		logger.LogError("MARSHAL", s.path, err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.ensureDir(); err != nil {
		logger.LogError("SAVE", s.path, err)
		return err
	}

	logger.LogFileWrite(s.path)
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		logger.LogError("SAVE", s.path, err)
		return err
	}

	logger.Log("Session saved to %s", s.path)
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogError("CLEAR", s.path, err)
		return err
	}

	logger.Log("Session cleared at %s", s.path)
	return nil
}
