package credentials

import (
	"context"
	"fmt"
	"strings"
)

// EnvStore reads a secret from an environment variable. It is read-only.
type EnvStore struct {
	name    string
	environ func() []string
}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore reads the variable name from environ (usually os.Environ).
func NewEnvStore(name string, environ func() []string) *EnvStore {
	return &EnvStore{name: name, environ: environ}
}

// Read implements Store.
func (s *EnvStore) Read(context.Context) (string, error) {
	for _, kv := range s.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key != s.name {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("environment variable %s: %w", s.name, ErrNotFound)
}

// Write implements Store and always fails.
func (s *EnvStore) Write(context.Context, string) error {
	return fmt.Errorf("environment variable %s: %w", s.name, ErrReadOnly)
}
