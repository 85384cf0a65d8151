package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/johanforsgren/repodeck/internal/domain"
)

func TestNewFileStoreDefaultPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	store, err := NewFileStore("")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, ".repodeck", "session.json")
	if store.Path() != expectedPath {
		t.Errorf("Expected session path %s, got %s", expectedPath, store.Path())
	}
}

func TestLoadMissingFileReturnsEmptySession(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if session.IsAuthenticated() || session.HasRefreshToken() {
		t.Errorf("expected empty session, got %+v", session)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	want := domain.Session{AccessToken: "A1", RefreshToken: "R1"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestSessionFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Save(domain.Session{AccessToken: "A1", RefreshToken: "R1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read session file: %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("session file is not a JSON object: %v", err)
	}
	if len(raw) != 2 || raw["access_token"] != "A1" || raw["refresh_token"] != "R1" {
		t.Errorf("unexpected session file contents: %v", raw)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected file mode 0600, got %o", perm)
	}
}

func TestClearRemovesTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Save(domain.Session{AccessToken: "A1", RefreshToken: "R1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}

	session, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if session != (domain.Session{}) {
		t.Errorf("expected empty session after clear, got %+v", session)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := store.Load(); err == nil {
		t.Error("expected error for corrupt session file")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(domain.Session{AccessToken: "A1", RefreshToken: "R1"})

	got, _ := store.Load()
	if got.AccessToken != "A1" {
		t.Errorf("expected initial session, got %+v", got)
	}

	_ = store.Save(domain.Session{AccessToken: "A2", RefreshToken: "R2"})
	got, _ = store.Load()
	if got.RefreshToken != "R2" {
		t.Errorf("expected saved session, got %+v", got)
	}

	_ = store.Clear()
	got, _ = store.Load()
	if got != (domain.Session{}) {
		t.Errorf("expected cleared session, got %+v", got)
	}
}
