// Package credentials reads and persists the secret a generator authenticates
// with: an API key or an OAuth refresh token.
//
// Writing an empty secret clears it. Stores are safe for concurrent use as far
// as their backends are.
package credentials

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Read when no secret is stored.
	ErrNotFound = errors.New("credential not found")
	// ErrReadOnly is returned by Write on stores that cannot persist secrets.
	ErrReadOnly = errors.New("credential store is read-only")
)

// Store reads and writes a single secret.
type Store interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, secret string) error
}
