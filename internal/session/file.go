package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const tokenFileMode = 0o600

// TokenFile persists a single session to disk for the jobwatch CLI, the
// terminal equivalent of the browser's local storage.
type TokenFile struct {
	path string
}

// DefaultTokenPath returns the token file location under the user config
// directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "north-cloud", "dashboard-token.json"), nil
}

// NewTokenFile creates a file-backed session holder at path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// Save writes the session, creating parent directories as needed.
func (t *TokenFile) Save(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(t.path, data, tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Load reads the stored session. Returns ErrNotFound if none exists or it
// has expired (an expired file is removed on the way out).
func (t *TokenFile) Load() (*Session, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}

	if s.Expired() {
		_ = t.Clear()
		return nil, ErrNotFound
	}
	return &s, nil
}

// Clear removes the stored session. Missing files are not an error.
func (t *TokenFile) Clear() error {
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
