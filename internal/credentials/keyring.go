package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore keeps the secret in the OS keychain (macOS Keychain, Secret
// Service, Windows Credential Manager).
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements Store
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore addresses the keychain entry (service, user).
func NewKeyringStore(service, user string) *KeyringStore {
	return &KeyringStore{service: service, user: user}
}

// Read implements Store.
func (s *KeyringStore) Read(context.Context) (string, error) {
	secret, err := keyring.Get(s.service, s.user)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && secret == "") {
		return "", fmt.Errorf("keyring entry %s/%s: %w", s.service, s.user, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return secret, nil
}

// Write implements Store. An empty secret deletes the entry.
func (s *KeyringStore) Write(_ context.Context, secret string) error {
	if secret == "" {
		if err := keyring.Delete(s.service, s.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("delete keyring entry: %w", err)
		}
		return nil
	}

	if err := keyring.Set(s.service, s.user, secret); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}
