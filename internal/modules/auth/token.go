package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the access token between runs. It also serves as the
// apiclient.TokenSource.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

// MemoryStore keeps the token for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error { return m.Save("") }

// FileStore keeps the token in a file readable only by the owner. The file
// is read once on creation.
type FileStore struct {
	path string
	mem  MemoryStore
}

// NewFileStore opens the store at path. A missing file means no token.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read token file: %w", err)
	default:
		fs.mem.token = strings.TrimSpace(string(data))
	}
	return fs, nil
}

func (f *FileStore) Token() string { return f.mem.Token() }

func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return f.mem.Save(token)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return f.mem.Clear()
}
