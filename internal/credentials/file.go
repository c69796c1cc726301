package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// FileStore keeps the secret in a file readable only by the current user.
type FileStore struct {
	path string
}

// Compile-time check to ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// NewFileStore stores the secret at path. A leading "~/" expands to the home directory.
func NewFileStore(path string) (*FileStore, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	if path == "" {
		return nil, errors.New("credential file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the resolved file path.
func (s *FileStore) Path() string {
	return s.path
}

// Read implements Store.
func (s *FileStore) Read(context.Context) (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("credential file %s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}

	secret := strings.TrimSpace(string(b))
	if secret == "" {
		return "", fmt.Errorf("credential file %s: %w", s.path, ErrNotFound)
	}
	return secret, nil
}

// Write implements Store. An empty secret removes the file.
func (s *FileStore) Write(_ context.Context, secret string) error {
	if secret == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove credential file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	if err := atomic.WriteFile(s.path, strings.NewReader(secret+"\n")); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	// atomic keeps the mode of a file it replaces
	if err := os.Chmod(s.path, fileMode); err != nil {
		return fmt.Errorf("chmod credential file: %w", err)
	}
	return nil
}
