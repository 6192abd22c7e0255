package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// DefaultPath is the cache file used when none is configured.
const DefaultPath = ".env"

// filePerm keeps the tokens readable by the owner only.
const filePerm = 0o600

// Store loads and persists State.
type Store interface {
	Load() (*State, error)
	Save(s *State) error
}

// FileStore keeps State in a dotenv file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the cache file. A missing file yields an empty State.
func (f *FileStore) Load() (*State, error) {
	m, err := godotenv.Read(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FromMap(nil), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", f.path, err)
	}
	return FromMap(m), nil
}

// Save rewrites the cache file atomically: the new content goes to a
// temporary file in the same directory which then replaces the original.
func (f *FileStore) Save(s *State) error {
	content, err := godotenv.Marshal(s.ToMap())
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("setting state file mode: %w", err)
	}
	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing state file %s: %w", f.path, err)
	}

	return nil
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	state *State
	saves int

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemoryStore returns a store holding a copy of initial.
func NewMemoryStore(initial *State) *MemoryStore {
	if initial == nil {
		initial = FromMap(nil)
	}
	return &MemoryStore{state: initial.Clone()}
}

// Load returns a copy of the stored state.
func (m *MemoryStore) Load() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone(), nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.state = s.Clone()
	m.saves++
	return nil
}

// Saves returns how many saves succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Snapshot returns a copy of the stored state.
func (m *MemoryStore) Snapshot() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}
