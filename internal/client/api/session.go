package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/dailydiet/internal/filex"
)

// ErrNoSession means there is no stored token pair; the user must log in.
var ErrNoSession = errors.New("not logged in")

// Session is the token pair kept between dietctl runs.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FileSessionStore keeps the session as JSON in a file only the owner can
// read.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (f *FileSessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if s.RefreshToken == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Save replaces the file atomically with mode 0600.
func (f *FileSessionStore) Save(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (f *FileSessionStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
