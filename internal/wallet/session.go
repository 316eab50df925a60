package wallet

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Session caches the email of the last opened wallet between runs.
type Session interface {
	Load() (string, error)
	Save(email string) error
	Clear() error
}

type MemorySession struct {
	mu    sync.Mutex
	email string
}

func (s *MemorySession) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email, nil
}

func (s *MemorySession) Save(email string) error {
	s.mu.Lock()
	s.email = email
	s.mu.Unlock()
	return nil
}

func (s *MemorySession) Clear() error { return s.Save("") }

// FileSession keeps the email in a small JSON file.
type FileSession struct {
	path string
	mu   sync.Mutex
}

type sessionFile struct {
	Email string `json:"email"`
}

// DefaultSessionPath is under the user's config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "healthoasis", "session.json"), nil
}

// NewFileSession uses DefaultSessionPath when path is empty.
func NewFileSession(path string) (*FileSession, error) {
	if path == "" {
		p, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileSession{path: path}, nil
}

func (s *FileSession) Path() string { return s.path }

func (s *FileSession) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var f sessionFile
	if err := json.Unmarshal(b, &f); err != nil {
		return "", err
	}
	return f.Email, nil
}

func (s *FileSession) Save(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(sessionFile{Email: email})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
